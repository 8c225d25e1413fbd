package typesystem

import (
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

// Parse turns a flat token slice into a ParamType. Accepted shapes are
// Name, &Name, Name<T, ...> and &Name<T, ...>.
//
// The slice is walked once while tracking angle depth. Commas at depth zero
// separate parameters and each parameter span is parsed on its own, so the
// recursion depth follows the written nesting rather than the token count.
func Parse(tokens []token.Token) (*ParamType, error) {
	if len(tokens) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrMalformedType, token.Token{}, "empty type")
	}

	raw := tokens
	isRef := false
	if tokens[0].Type == token.AMPERSAND {
		isRef = true
		tokens = tokens[1:]
		if len(tokens) == 0 {
			return nil, malformed(raw[0], "reference sigil without a type")
		}
	}

	head := tokens[0]
	if !isTypeName(head) {
		if head.Type == token.AMPERSAND {
			return nil, malformed(head, "the reference sigil must be the first token of a type")
		}
		return nil, malformed(head, "expected a type name, got '"+head.Lexeme+"'")
	}

	node := &ParamType{Name: head.Lexeme, Raw: raw, IsReference: isRef}
	if len(tokens) == 1 {
		return node, nil
	}

	if tokens[1].Type != token.LT {
		return nil, malformed(tokens[1], "expected '<' after '"+head.Lexeme+"'")
	}
	last := tokens[len(tokens)-1]
	if last.Type != token.GT {
		return nil, malformed(last, "expected '>' to close the type arguments of '"+head.Lexeme+"'")
	}

	inner := tokens[2 : len(tokens)-1]
	if len(inner) == 0 {
		return nil, malformed(tokens[1], "empty type argument list")
	}

	depth := 0
	start := 0
	for i, tok := range inner {
		switch tok.Type {
		case token.LT:
			depth++
		case token.GT:
			depth--
			if depth < 0 {
				return nil, malformed(tok, "unbalanced '>'")
			}
		case token.COMMA:
			if depth > 0 {
				continue
			}
			param, err := parseParam(inner[start:i], tok)
			if err != nil {
				return nil, err
			}
			node.Params = append(node.Params, param)
			start = i + 1
		}
	}
	if depth != 0 {
		return nil, malformed(last, "unbalanced '<'")
	}
	param, err := parseParam(inner[start:], last)
	if err != nil {
		return nil, err
	}
	node.Params = append(node.Params, param)
	return node, nil
}

func parseParam(span []token.Token, at token.Token) (*ParamType, error) {
	if len(span) == 0 {
		return nil, malformed(at, "empty type parameter")
	}
	return Parse(span)
}

func isTypeName(tok token.Token) bool {
	return tok.Type == token.UNKNOWN || tok.Type == token.DISCRETE || token.IsDataType(tok.Type)
}

func malformed(at token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrMalformedType, at, msg)
}
