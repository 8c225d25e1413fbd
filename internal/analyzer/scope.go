package analyzer

import (
	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/symbols"
	"github.com/funvibe/surf/internal/token"
	"github.com/funvibe/surf/internal/typesystem"
)

// checkScopes walks every body, declaring parameters and `let` bindings in a
// stack of frames and validating each binding as it is declared.
func (a *Analyzer) checkScopes() error {
	scope := a.outerScope()
	heap := a.importsHeap()

	for _, fn := range a.fc.Functions {
		scope.Reset()
		scope.Push()
		if err := a.declareParams(scope, fn); err != nil {
			return err
		}

		body := fn.Body
		for i := 0; i < len(body); i++ {
			switch body[i].Type {
			case token.LBRACE:
				scope.Push()
			case token.RBRACE:
				if scope.Depth() > 1 {
					scope.Pop()
				}
			case token.LET:
				end, err := a.declareVariable(scope, body, i, heap)
				if err != nil {
					return err
				}
				i = end
			}
		}
	}
	return nil
}

func (a *Analyzer) declareParams(scope *symbols.Scope, fn *ast.Function) error {
	for _, p := range fn.Params {
		pt, err := p.ParamType()
		if err != nil {
			return err
		}
		if outer, ok := scope.LookupOuter(p.Name); ok {
			return collision("parameter", p.Name, token.Token{}, outer).WithTrace(p.Trace)
		}
		scope.Declare(&symbols.Variable{
			Name:       p.Name,
			Type:       pt,
			RefToParam: p.IsReference,
			Trace:      p.Trace,
		})
	}
	return nil
}

// declareVariable checks `let name: type = value;` starting at body[at] and
// returns the index of its semicolon.
func (a *Analyzer) declareVariable(scope *symbols.Scope, body []token.Token, at int, heap bool) (int, error) {
	let := body[at]
	end, ok := statementEnd(body, at)
	if !ok {
		return at, syntaxError(let, "missing ';' after the variable declaration")
	}

	stmt := body[at+1 : end]
	if len(stmt) < 4 {
		return at, syntaxError(let, "incomplete variable declaration").
			WithHints("Declare variables as `let name: type = value;`")
	}
	name := stmt[0]
	if stmt[1].Type != token.COLON {
		return at, syntaxError(stmt[1], "expected ':' after the variable name")
	}
	eq := -1
	for j := 2; j < len(stmt); j++ {
		if stmt[j].Type == token.ASSIGN {
			eq = j
			break
		}
	}
	switch {
	case eq < 0:
		return at, syntaxError(let, "expected '=' in the variable declaration")
	case eq == 2:
		return at, syntaxError(stmt[eq], "missing variable type")
	case eq == len(stmt)-1:
		return at, syntaxError(stmt[eq], "missing value after '='")
	}
	value := stmt[eq+1:]

	if name.Type != token.UNKNOWN {
		return at, diagnostics.Errorf(diagnostics.ErrInvalidIdentifier, name, "'%s' is a reserved word", name.Lexeme)
	}
	if err := checkIdentifier("variable", name.Lexeme, name); err != nil {
		return at, err
	}
	a.checkStyle("variable", name.Lexeme, name)

	pt, err := typesystem.Parse(stmt[2:eq])
	if err != nil {
		return at, err
	}
	if err := a.checkType(pt); err != nil {
		return at, err
	}

	if prev, ok := scope.Lookup(name.Lexeme); ok {
		return at, diagnostics.Errorf(diagnostics.ErrScopeCollision, name, "'%s' is already declared", name.Lexeme).
			WithHints("Previous declaration at " + prev.Trace)
	}
	if outer, ok := scope.LookupOuter(name.Lexeme); ok {
		return at, collision("variable", name.Lexeme, name, outer)
	}

	v := &symbols.Variable{Name: name.Lexeme, Type: pt, Trace: name.Trace()}
	if err := bindReference(v, name, a.referenceSource(scope, value, heap)); err != nil {
		return at, err
	}
	scope.Declare(v)
	return end, nil
}

// statementEnd returns the index of the ';' closing the statement that starts
// at body[at]. A statement never spans a brace or the start of another
// statement.
func statementEnd(body []token.Token, at int) (int, bool) {
	for end := at + 1; end < len(body); end++ {
		switch body[end].Type {
		case token.SEMICOLON:
			return end, true
		case token.LBRACE, token.RBRACE, token.LET, token.RETURN:
			return end, false
		}
	}
	return len(body), false
}

// checkType resolves every non-builtin name of pt against the imported
// classes and compares generic counts.
func (a *Analyzer) checkType(pt *typesystem.ParamType) error {
	head := typeHead(pt)
	switch {
	case head.Type == token.DISCRETE:
	case pt.IsBuiltin():
		if pt.GenericCount() > 0 {
			return arityMismatch(head, pt.Name, pt.GenericCount(), 0)
		}
	default:
		class, _, ok := a.headers.Class(pt.Name)
		if !ok {
			return diagnostics.Errorf(diagnostics.ErrUnknownType, head, "unknown type '%s'", pt.Name).
				WithHints("Import the header that declares " + pt.Name)
		}
		if class.GenericCount != pt.GenericCount() {
			return arityMismatch(head, pt.Name, pt.GenericCount(), class.GenericCount)
		}
	}
	for _, param := range pt.Params {
		if err := a.checkType(param); err != nil {
			return err
		}
	}
	return nil
}

type refSource int

const (
	refNone refSource = iota
	refParam
	refHeap
)

// origin describes where a binding's value comes from, as far as
// references are concerned.
type origin struct {
	source refSource
	// from is set when the value is a single name bound to a reference.
	from *symbols.Variable
}

func (a *Analyzer) referenceSource(scope *symbols.Scope, value []token.Token, heap bool) origin {
	if len(value) == 1 {
		v, ok := scope.Lookup(value[0].Lexeme)
		if !ok || !v.IsReference() || value[0].Type != token.UNKNOWN {
			return origin{}
		}
		if v.RefToHeap {
			return origin{source: refHeap, from: v}
		}
		return origin{source: refParam, from: v}
	}
	if heap && isHeapInvocation(value) {
		return origin{source: refHeap}
	}
	return origin{}
}

func bindReference(v *symbols.Variable, name token.Token, o origin) error {
	if v.IsReference() {
		switch o.source {
		case refParam:
			v.RefToParam = true
			return nil
		case refHeap:
			v.RefToHeap = true
			return nil
		}
		return diagnostics.Errorf(diagnostics.ErrInvalidReference, name,
			"reference '%s' must be initialised from a reference parameter, a reference variable or a heap allocation", v.Name).
			WithHints(
				"Use Heap<T>.unwrap() to allocate the value on the heap",
				"Remove the ampersand from the variable type (will hold a copy)",
			)
	}
	if o.from != nil && o.from.RefToParam {
		return diagnostics.Errorf(diagnostics.ErrInvalidReference, name,
			"'%s' is not a reference but is initialised from the reference '%s'", v.Name, o.from.Name).
			WithHints("Declare '" + v.Name + "' with an ampersand type")
	}
	return nil
}

func typeHead(pt *typesystem.ParamType) token.Token {
	if len(pt.Raw) == 0 {
		return token.Token{}
	}
	if pt.IsReference && len(pt.Raw) > 1 {
		return pt.Raw[1]
	}
	return pt.Raw[0]
}

func arityMismatch(at token.Token, name string, provided, expected int) *diagnostics.DiagnosticError {
	return diagnostics.Errorf(diagnostics.ErrArityMismatch, at,
		"wrong number of generic parameters for '%s': %d provided, %d expected", name, provided, expected)
}

func collision(what, name string, at token.Token, outer symbols.Outer) *diagnostics.DiagnosticError {
	return diagnostics.Errorf(diagnostics.ErrScopeCollision, at,
		"%s '%s' collides with the %s '%s'", what, name, outer.Kind, outer.Name).
		WithHints("Declared at " + outer.Origin)
}

func syntaxError(tok token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrSyntax, tok, msg)
}
