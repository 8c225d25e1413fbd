// Package parser extracts function declarations and imports from a token
// stream. Bodies are kept as opaque token runs for the analyzer.
package parser

import (
	"github.com/funvibe/surf/internal/ast"
	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
)

// ImportResolver resolves import statements that survived splicing
// (headers and standard-library packages).
type ImportResolver interface {
	ResolveAll(stmt []token.Token, from string) ([]ast.Import, error)
}

type state int

const (
	stateTopLevel state = iota
	stateName
	stateOpenParen
	stateParamName
	stateColon
	stateParamType
	stateArrow
	stateReturnType
	stateOpenBrace
	stateBody
)

type extractor struct {
	tokens   []token.Token
	resolver ImportResolver
	fc       *ast.FileCode

	state      state
	fn         *ast.Function
	param      *ast.Param
	start      token.Token // 'fun' of the function being built
	angle      int
	braces     int
	afterComma bool
}

// Extract builds the program model from tokens in a single pass over an
// explicit state machine. Declarations never nest, so there is no recursion.
func Extract(tokens []token.Token, source string, resolver ImportResolver) (*ast.FileCode, error) {
	if len(tokens) == 0 {
		return nil, diagnostics.NewError(diagnostics.ErrSyntax, token.Token{}, "refused to parse an empty file").
			WithHints("Add at least a main function: fun main() { }")
	}
	e := &extractor{
		tokens:   tokens,
		resolver: resolver,
		fc:       &ast.FileCode{Source: source},
	}
	if err := e.run(); err != nil {
		return nil, err
	}
	return e.fc, nil
}

func (e *extractor) run() error {
	for i := 0; i < len(e.tokens); i++ {
		tok := e.tokens[i]
		var err error
		switch e.state {
		case stateTopLevel:
			i, err = e.topLevel(i)
		case stateName:
			err = e.name(tok)
		case stateOpenParen:
			err = e.expect(tok, token.LPAREN, "expected '(' after the function name", stateParamName)
		case stateParamName:
			err = e.paramName(tok)
		case stateColon:
			err = e.expect(tok, token.COLON, "expected ':' after the parameter name", stateParamType)
		case stateParamType:
			err = e.paramType(tok)
		case stateArrow:
			err = e.arrow(tok)
		case stateReturnType:
			err = e.returnType(tok, e.peek(i))
		case stateOpenBrace:
			err = e.expect(tok, token.LBRACE, "expected '{' to open the function body", stateBody)
			e.braces = 1
		case stateBody:
			err = e.body(tok)
		}
		if err != nil {
			return err
		}
	}

	if e.state != stateTopLevel {
		return diagnostics.Errorf(diagnostics.ErrUnterminatedFunction, e.start, "function %q is never closed", e.fn.Name).
			WithHints("Check that every '{' has a matching '}'")
	}
	return nil
}

func (e *extractor) topLevel(i int) (int, error) {
	tok := e.tokens[i]
	switch tok.Type {
	case token.PUB:
		if i+1 >= len(e.tokens) || e.tokens[i+1].Type != token.FUN {
			return i, syntaxError(tok, "'pub' must be immediately followed by 'fun'")
		}
		e.begin(e.tokens[i+1], true)
		return i + 1, nil
	case token.FUN:
		e.begin(tok, false)
		return i, nil
	case token.IMPORT:
		return e.importStatement(i)
	}
	return i, syntaxError(tok, "code outside of a function").
		WithHints("Only functions and imports may appear at the top level")
}

func (e *extractor) begin(fun token.Token, public bool) {
	e.start = fun
	e.fn = &ast.Function{File: fun.File, Trace: fun.Trace(), Public: public}
	e.state = stateName
}

func (e *extractor) importStatement(i int) (int, error) {
	tok := e.tokens[i]
	if i+1 >= len(e.tokens) || e.tokens[i+1].Type != token.STRING_LITERAL {
		return i, syntaxError(tok, "expected a quoted path after 'import'")
	}
	end := i + 2
	if end < len(e.tokens) && e.tokens[end].Type == token.SEMICOLON {
		end++
	}
	if e.resolver != nil {
		imports, err := e.resolver.ResolveAll(e.tokens[i:end], tok.File)
		if err != nil {
			return i, err
		}
		for _, imp := range imports {
			e.fc.AddImport(imp)
		}
	}
	return end - 1, nil
}

func (e *extractor) name(tok token.Token) error {
	if tok.Type != token.UNKNOWN {
		return syntaxError(tok, "expected a function name, got '"+tok.Lexeme+"'")
	}
	e.fn.Name = tok.Lexeme
	e.fn.NameToken = tok
	e.state = stateOpenParen
	return nil
}

func (e *extractor) expect(tok token.Token, want token.TokenType, msg string, next state) error {
	if tok.Type != want {
		return syntaxError(tok, msg)
	}
	e.state = next
	return nil
}

func (e *extractor) paramName(tok token.Token) error {
	switch tok.Type {
	case token.RPAREN:
		if e.afterComma {
			return syntaxError(tok, "expected a parameter name after ','")
		}
		e.state = stateArrow
		return nil
	case token.UNKNOWN:
		e.param = &ast.Param{Name: tok.Lexeme, Trace: tok.Trace()}
		e.afterComma = false
		e.state = stateColon
		return nil
	}
	return syntaxError(tok, "expected a parameter name, got '"+tok.Lexeme+"'")
}

func (e *extractor) paramType(tok token.Token) error {
	switch tok.Type {
	case token.AMPERSAND:
		if e.param.IsReference {
			return syntaxError(tok, "a parameter type may carry only one '&'")
		}
		if len(e.param.Type) > 0 {
			return syntaxError(tok, "'&' must come before the parameter type")
		}
		e.param.IsReference = true
	case token.LT:
		e.angle++
		e.param.Type = append(e.param.Type, tok)
	case token.GT:
		e.angle--
		if e.angle < 0 {
			return syntaxError(tok, "unexpected '>' in parameter type")
		}
		e.param.Type = append(e.param.Type, tok)
	case token.COMMA:
		if e.angle > 0 {
			e.param.Type = append(e.param.Type, tok)
			return nil
		}
		if err := e.finishParam(tok); err != nil {
			return err
		}
		e.afterComma = true
		e.state = stateParamName
	case token.RPAREN:
		if e.angle > 0 {
			return syntaxError(tok, "unclosed '<' in parameter type")
		}
		if err := e.finishParam(tok); err != nil {
			return err
		}
		e.state = stateArrow
	case token.LBRACE, token.RBRACE, token.SEMICOLON, token.LPAREN, token.ARROW:
		return syntaxError(tok, "unexpected '"+tok.Lexeme+"' in parameter type")
	default:
		e.param.Type = append(e.param.Type, tok)
	}
	return nil
}

func (e *extractor) finishParam(at token.Token) error {
	if len(e.param.Type) == 0 {
		return syntaxError(at, "parameter '"+e.param.Name+"' has no type")
	}
	if _, err := e.param.ParamType(); err != nil {
		return err
	}
	e.fn.Params = append(e.fn.Params, e.param)
	e.param = nil
	e.angle = 0
	return nil
}

func (e *extractor) arrow(tok token.Token) error {
	switch tok.Type {
	case token.ARROW:
		e.state = stateReturnType
		return nil
	case token.LBRACE:
		// no declared return type means nothing
		e.fn.ReturnType = []token.Token{{Type: token.NOTHING, Lexeme: "nothing", File: tok.File, Line: tok.Line, Column: tok.Column}}
		e.braces = 1
		e.state = stateBody
		return nil
	}
	return syntaxError(tok, "expected '->' or '{' after the parameter list")
}

// returnType collects tokens up to the body's '{', which is left for
// stateOpenBrace.
func (e *extractor) returnType(tok token.Token, next *token.Token) error {
	switch tok.Type {
	case token.LBRACE:
		return syntaxError(tok, "missing return type after '->'")
	case token.RBRACE, token.SEMICOLON, token.ARROW, token.LPAREN, token.RPAREN:
		return syntaxError(tok, "unexpected '"+tok.Lexeme+"' in return type")
	}
	e.fn.ReturnType = append(e.fn.ReturnType, tok)
	if next == nil || next.Type != token.LBRACE {
		return nil
	}
	if _, err := e.fn.Returns(); err != nil {
		return err
	}
	e.state = stateOpenBrace
	return nil
}

func (e *extractor) peek(i int) *token.Token {
	if i+1 < len(e.tokens) {
		return &e.tokens[i+1]
	}
	return nil
}

func (e *extractor) body(tok token.Token) error {
	switch tok.Type {
	case token.LBRACE:
		e.braces++
	case token.RBRACE:
		e.braces--
		if e.braces == 0 {
			e.fc.Functions = append(e.fc.Functions, e.fn)
			e.fn = nil
			e.state = stateTopLevel
			return nil
		}
	case token.IMPORT:
		return syntaxError(tok, "imports are only allowed between top-level declarations")
	case token.FUN, token.PUB:
		return syntaxError(tok, "functions cannot be declared inside another function").
			WithHints("Move the declaration to the top level")
	}
	e.fn.Body = append(e.fn.Body, tok)
	return nil
}

func syntaxError(tok token.Token, msg string) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrSyntax, tok, msg)
}
