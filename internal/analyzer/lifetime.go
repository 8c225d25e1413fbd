package analyzer

import (
	"regexp"
	"strings"

	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

// The only expression accepted as a heap-backed reference. Anything that
// merely contains a heap allocation is still rejected.
var heapInvocationPattern = regexp.MustCompile(`^Heap\([\s\S]*?\)\.unwrap\(\)`)

func isHeapInvocation(value []token.Token) bool {
	var sb strings.Builder
	for _, tok := range value {
		sb.WriteString(tok.Lexeme)
	}
	text := sb.String()
	matches := heapInvocationPattern.FindAllString(text, -1)
	return len(matches) == 1 && matches[0] == text
}

// checkLifetimes inspects every `return ... ;` run. Functions returning a
// reference may only return a reference parameter or a heap invocation;
// functions returning nothing may not return a value at all.
func (a *Analyzer) checkLifetimes() error {
	heap := a.importsHeap()

	for _, fn := range a.fc.Functions {
		body := fn.Body
		for i := 0; i < len(body); i++ {
			if body[i].Type != token.RETURN {
				continue
			}
			ret := body[i]
			end, ok := statementEnd(body, i)
			if !ok {
				return syntaxError(ret, "missing ';' after the return statement")
			}
			value := body[i+1 : end]
			i = end

			switch {
			case fn.ReturnsNothing():
				if len(value) > 0 {
					return diagnostics.Errorf(diagnostics.ErrInvalidReturn, value[0],
						"function '%s' returns nothing but a value is returned", fn.Name).
						WithHints("Remove the returned value or declare a return type")
				}
			case fn.ReturnsReference():
				if err := checkReturnedReference(fn, ret, value, heap); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkReturnedReference(fn *ast.Function, ret token.Token, value []token.Token, heap bool) error {
	switch len(value) {
	case 0:
		return dangling(ret, "function '"+fn.Name+"' returns a reference but the return has no value")
	case 1:
		if p := fn.Param(value[0].Lexeme); p != nil && p.IsReference && value[0].Type == token.UNKNOWN {
			return nil
		}
		return dangling(value[0], "'"+value[0].Lexeme+"' is not a reference parameter of '"+fn.Name+"'")
	}

	if !isHeapInvocation(value) {
		return dangling(value[0], "function '"+fn.Name+"' returns a reference to a value that does not outlive it")
	}
	if !heap {
		return dangling(value[0], "heap allocation used without importing Heap").
			WithHints("Import the header that declares Heap")
	}
	return nil
}

func dangling(at token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrDanglingReference, at, msg).
		WithHints(
			"Use Heap<T>.unwrap() to return heap-allocated values",
			"Remove the ampersand from the return type (will return a copy)",
		)
}
