// Package ast holds the program model produced by the extractor: the
// functions and imports of one compilation unit.
package ast

import (
	"strings"

	"github.com/funvibe/surf/internal/token"
	"github.com/funvibe/surf/internal/typesystem"
)

type ImportKind int

const (
	// SourceImport is a Surf file spliced into the token stream.
	SourceImport ImportKind = iota
	// HeaderImport is a foreign header summarized by the header collaborator.
	HeaderImport
	// PackageImport is a standard-library directory; its headers are
	// imported alongside it.
	PackageImport
)

func (k ImportKind) String() string {
	switch k {
	case HeaderImport:
		return "header"
	case PackageImport:
		return "package"
	}
	return "source"
}

// Import is a resolved import statement. Two imports are the same import
// when their locations are equal.
type Import struct {
	Location string
	Trace    string
	Kind     ImportKind
}

// Param is a single function parameter. Type holds the written type tokens
// without the reference sigil.
type Param struct {
	Name        string
	Type        []token.Token
	Trace       string
	IsReference bool
}

// ParamType parses the declared type, re-attaching the reference flag.
func (p *Param) ParamType() (*typesystem.ParamType, error) {
	pt, err := typesystem.Parse(p.Type)
	if err != nil {
		return nil, err
	}
	pt.IsReference = p.IsReference
	return pt, nil
}

type Function struct {
	Name       string
	File       string
	Params     []*Param
	Body       []token.Token
	ReturnType []token.Token
	Trace      string
	Public     bool

	// NameToken is kept for diagnostics pointing at the declaration.
	NameToken token.Token
}

// Returns parses the declared return type.
func (f *Function) Returns() (*typesystem.ParamType, error) {
	return typesystem.Parse(f.ReturnType)
}

// ReturnsReference reports whether the written return type starts with '&'.
func (f *Function) ReturnsReference() bool {
	return len(f.ReturnType) > 0 && f.ReturnType[0].Type == token.AMPERSAND
}

// ReturnsNothing reports whether the function is declared to return nothing.
func (f *Function) ReturnsNothing() bool {
	return len(f.ReturnType) == 1 && f.ReturnType[0].Type == token.NOTHING
}

// Param returns the parameter called name, or nil.
func (f *Function) Param(name string) *Param {
	for _, p := range f.Params {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Signature renders the declaration head, e.g. `pub fun f(x: &str) -> &str`.
func (f *Function) Signature() string {
	var sb strings.Builder
	if f.Public {
		sb.WriteString("pub ")
	}
	sb.WriteString("fun ")
	sb.WriteString(f.Name)
	sb.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		if p.IsReference {
			sb.WriteByte('&')
		}
		sb.WriteString(joinType(p.Type))
	}
	sb.WriteString(") -> ")
	sb.WriteString(joinType(f.ReturnType))
	return sb.String()
}

func joinType(tokens []token.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.Type == token.COMMA {
			sb.WriteString(", ")
			continue
		}
		sb.WriteString(t.Lexeme)
	}
	return sb.String()
}

// FileCode is the program model of one compilation unit. It is built once by
// the extractor and only read afterwards.
type FileCode struct {
	Path      string
	Source    string
	BuildID   string
	Functions []*Function
	Imports   []Import
}

// AddImport appends imp unless an import of the same location is present.
// It reports whether the import was added.
func (fc *FileCode) AddImport(imp Import) bool {
	for _, existing := range fc.Imports {
		if existing.Location == imp.Location {
			return false
		}
	}
	fc.Imports = append(fc.Imports, imp)
	return true
}

// HeaderImports returns the imports handled by the header collaborator.
func (fc *FileCode) HeaderImports() []Import {
	var out []Import
	for _, imp := range fc.Imports {
		if imp.Kind == HeaderImport {
			out = append(out, imp)
		}
	}
	return out
}

// Lookup returns every function called name, in declaration order.
func (fc *FileCode) Lookup(name string) []*Function {
	var out []*Function
	for _, fn := range fc.Functions {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	return out
}
