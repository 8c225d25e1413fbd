package analyzer

import (
	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/config"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

// checkFunctionTable validates declaration names, their uniqueness and the
// entry point.
func (a *Analyzer) checkFunctionTable() error {
	public := make(map[string]*ast.Function)
	private := make(map[string]map[string]*ast.Function) // file -> name

	for _, fn := range a.fc.Functions {
		if err := checkIdentifier("function", fn.Name, fn.NameToken); err != nil {
			return err
		}
		a.checkStyle("function", fn.Name, fn.NameToken)

		if err := checkParams(fn); err != nil {
			return err
		}

		if sym, summary, ok := a.headers.Lookup(fn.Name); ok {
			return diagnostics.Errorf(diagnostics.ErrScopeCollision, fn.NameToken,
				"function '%s' collides with the imported %s '%s'", fn.Name, sym.Kind, sym.Name).
				WithHints("Declared in " + summary.Location)
		}

		if fn.Public {
			if prev, ok := public[fn.Name]; ok {
				return duplicate(fn, prev)
			}
			if prev, ok := private[fn.File][fn.Name]; ok {
				return duplicate(fn, prev)
			}
			public[fn.Name] = fn
			continue
		}

		names := private[fn.File]
		if names == nil {
			names = make(map[string]*ast.Function)
			private[fn.File] = names
		}
		if prev, ok := names[fn.Name]; ok {
			return duplicate(fn, prev)
		}
		if prev, ok := public[fn.Name]; ok && prev.File == fn.File {
			return duplicate(fn, prev)
		}
		names[fn.Name] = fn
	}

	return a.checkMain()
}

func checkParams(fn *ast.Function) error {
	seen := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		if err := checkIdentifier("parameter", p.Name, token.Token{}); err != nil {
			return err.WithTrace(p.Trace)
		}
		if seen[p.Name] {
			return diagnostics.Errorf(diagnostics.ErrDuplicateDefinition, token.Token{},
				"parameter '%s' is declared twice in '%s'", p.Name, fn.Name).WithTrace(p.Trace)
		}
		seen[p.Name] = true
	}
	return nil
}

func (a *Analyzer) checkMain() error {
	mains := a.fc.Lookup(config.MainFuncName)
	switch {
	case len(mains) == 0:
		return diagnostics.NewError(diagnostics.ErrMissingOrInvalidMain, token.Token{},
			"the program has no main function").
			WithTrace(a.fc.Path).
			WithHints("Declare `fun main() { ... }` in the entry file")
	case len(mains) > 1:
		return diagnostics.NewError(diagnostics.ErrMissingOrInvalidMain, mains[1].NameToken,
			"main is declared more than once").
			WithHints("First declared at " + mains[0].Trace)
	}

	main := mains[0]
	if len(main.Params) > 0 {
		return diagnostics.NewError(diagnostics.ErrMissingOrInvalidMain, main.NameToken,
			"main must not take parameters")
	}
	if !main.ReturnsNothing() {
		return diagnostics.NewError(diagnostics.ErrMissingOrInvalidMain, main.NameToken,
			"main must return nothing").
			WithHints("Remove the return type of main")
	}
	return nil
}

func duplicate(fn, prev *ast.Function) *diagnostics.DiagnosticError {
	return diagnostics.Errorf(diagnostics.ErrDuplicateDefinition, fn.NameToken,
		"function '%s' is already defined", fn.Name).
		WithHints("Previous definition at " + prev.Trace)
}
