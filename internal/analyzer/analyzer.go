// Package analyzer validates an extracted program: the function table, the
// variables declared in every body and the lifetime of returned references.
package analyzer

import (
	"log/slog"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/ext"
	"github.com/funvibe/surf/internal/symbols"
)

// Analyzer runs the semantic passes over one FileCode. It never modifies the
// program, so Analyze can be called any number of times.
type Analyzer struct {
	fc      *ast.FileCode
	headers ext.Set

	warnings []*diagnostics.DiagnosticError
}

// New creates an analyzer for fc. headers are the summaries of every foreign
// header reachable from the program.
func New(fc *ast.FileCode, headers ext.Set) *Analyzer {
	return &Analyzer{fc: fc, headers: headers}
}

// Analyze runs the function table, scope and lifetime passes in that order
// and returns the first error.
func (a *Analyzer) Analyze() error {
	a.warnings = nil

	passes := []struct {
		name string
		run  func() error
	}{
		{"functions", a.checkFunctionTable},
		{"scopes", a.checkScopes},
		{"lifetimes", a.checkLifetimes},
	}
	for _, pass := range passes {
		if err := pass.run(); err != nil {
			slog.Debug("analysis failed", "build", a.fc.BuildID, "pass", pass.name, "err", err)
			return err
		}
	}
	return nil
}

// Warnings returns the style warnings of the last Analyze call.
func (a *Analyzer) Warnings() []*diagnostics.DiagnosticError {
	return a.warnings
}

// outerScope builds a scope whose permanent names are the program's functions
// and the symbols of every imported header.
func (a *Analyzer) outerScope() *symbols.Scope {
	scope := symbols.NewScope()
	for _, fn := range a.fc.Functions {
		scope.DeclareOuter(symbols.Outer{Name: fn.Name, Kind: symbols.OuterFunction, Origin: fn.Trace})
	}
	for _, summary := range a.headers {
		for _, sym := range summary.Symbols {
			scope.DeclareOuter(symbols.Outer{Name: sym.Name, Kind: symbols.OuterImported, Origin: summary.Location})
		}
	}
	return scope
}

// importsHeap reports whether a Heap class is visible to the program.
func (a *Analyzer) importsHeap() bool {
	_, _, ok := a.headers.Class(config.HeapClassName)
	return ok
}
