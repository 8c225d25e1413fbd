package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type TokenType string

const (
	UNKNOWN TokenType = "Unknown" // identifiers and anything unclassified

	// Keywords
	FUN      TokenType = "Function"
	LET      TokenType = "Let"
	CONST    TokenType = "Const"
	IF       TokenType = "If"
	ELSE     TokenType = "Else"
	ELSE_IF  TokenType = "ElseIf"
	RETURN   TokenType = "Return"
	WHILE    TokenType = "While"
	FOR      TokenType = "For"
	IN       TokenType = "In"
	BREAK    TokenType = "Break"
	CONTINUE TokenType = "Continue"
	UNSAFE   TokenType = "Unsafe"
	PUB      TokenType = "Pub"
	IMPORT   TokenType = "Import"
	FROM     TokenType = "From"
	AS       TokenType = "As"

	// Operators
	ASSIGN          TokenType = "Assign"
	ASSIGN_ADD      TokenType = "AssignAdd"
	ASSIGN_SUB      TokenType = "AssignSub"
	ASSIGN_ASTERISK TokenType = "AssignAsterisk"
	ASSIGN_SLASH    TokenType = "AssignSlash"
	ASSIGN_PERCENT  TokenType = "AssignPercent"
	PLUS            TokenType = "Plus"
	MINUS           TokenType = "Minus"
	INCREMENT       TokenType = "Increment"
	DECREMENT       TokenType = "Decrement"
	ASTERISK        TokenType = "Asterisk"
	SLASH           TokenType = "Slash"
	PERCENT         TokenType = "Percent"
	LT              TokenType = "LessThan"
	GT              TokenType = "GreaterThan"
	LTE             TokenType = "LessThanOrEqual"
	GTE             TokenType = "GreaterThanOrEqual"
	EQ              TokenType = "Equal"
	NOT_EQ          TokenType = "NotEqual"
	BANG            TokenType = "Not"
	AMPERSAND       TokenType = "Ampersand"
	BAR             TokenType = "Bar"
	XOR             TokenType = "Xor"
	ARROW           TokenType = "Arrow"
	BACKSLASH       TokenType = "Backslash"

	// Punctuation
	COMMA     TokenType = "Comma"
	SEMICOLON TokenType = "Semicolon"
	COLON     TokenType = "Colon"
	DOT       TokenType = "Dot"
	LPAREN    TokenType = "OpenParen"
	RPAREN    TokenType = "CloseParen"
	LBRACE    TokenType = "OpenCurly"
	RBRACE    TokenType = "CloseCurly"
	LBRACKET  TokenType = "OpenBracket"
	RBRACKET  TokenType = "CloseBracket"

	// Builtin data types
	STR        TokenType = "String"
	NUM        TokenType = "Num"
	BOOL       TokenType = "Bool"
	NOTHING    TokenType = "Nothing"
	STR_ARRAY  TokenType = "StringArray"
	NUM_ARRAY  TokenType = "NumArray"
	BOOL_ARRAY TokenType = "BoolArray"
	DISCRETE   TokenType = "Discrete"

	// Literals
	STRING_LITERAL TokenType = "StringLiteral"
	NUM_LITERAL    TokenType = "NumLiteral"
	BOOL_LITERAL   TokenType = "BoolLiteral"
)

// Token is a single lexical unit. Line and Column are 1-based and point at the
// first character of the token.
type Token struct {
	Type   TokenType
	Lexeme string
	File   string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
}

// Trace renders the location as file:line:column, relative to the working
// directory when possible.
func (t Token) Trace() string {
	return fmt.Sprintf("%s:%d:%d", DisplayPath(t.File), t.Line, t.Column)
}

// DisplayPath strips the current working directory from an absolute path.
func DisplayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

var keywords = map[string]TokenType{
	"fun":      FUN,
	"let":      LET,
	"const":    CONST,
	"if":       IF,
	"else":     ELSE,
	"elseif":   ELSE_IF,
	"return":   RETURN,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"unsafe":   UNSAFE,
	"pub":      PUB,
	"import":   IMPORT,
	"from":     FROM,
	"as":       AS,

	"str":        STR,
	"num":        NUM,
	"bool":       BOOL,
	"nothing":    NOTHING,
	"str[]":      STR_ARRAY,
	"num[]":      NUM_ARRAY,
	"bool[]":     BOOL_ARRAY,
	"[discrete]": DISCRETE,

	"=":  ASSIGN,
	"+=": ASSIGN_ADD,
	"-=": ASSIGN_SUB,
	"*=": ASSIGN_ASTERISK,
	"/=": ASSIGN_SLASH,
	"%=": ASSIGN_PERCENT,
	"+":  PLUS,
	"-":  MINUS,
	"++": INCREMENT,
	"--": DECREMENT,
	"*":  ASTERISK,
	"/":  SLASH,
	"%":  PERCENT,
	"<":  LT,
	">":  GT,
	"<=": LTE,
	">=": GTE,
	"==": EQ,
	"!=": NOT_EQ,
	"!":  BANG,
	"&":  AMPERSAND,
	"|":  BAR,
	"^":  XOR,
	"->": ARROW,
	"\\": BACKSLASH,
	",":  COMMA,
	";":  SEMICOLON,
	":":  COLON,
	".":  DOT,
	"(":  LPAREN,
	")":  RPAREN,
	"{":  LBRACE,
	"}":  RBRACE,
	"[":  LBRACKET,
	"]":  RBRACKET,
}

// LookupKnown returns the type of a keyword, builtin type or operator lexeme.
func LookupKnown(lexeme string) (TokenType, bool) {
	tt, ok := keywords[lexeme]
	return tt, ok
}

// IsDataType reports whether tt is one of the builtin data types.
func IsDataType(tt TokenType) bool {
	switch tt {
	case STR, NUM, BOOL, NOTHING, STR_ARRAY, NUM_ARRAY, BOOL_ARRAY:
		return true
	}
	return false
}

// IsScalarType reports whether tt is a builtin type that has an array form.
func IsScalarType(tt TokenType) bool {
	return tt == STR || tt == NUM || tt == BOOL
}

// Lexemes joins the lexemes of a token run without separators.
func Lexemes(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Lexeme)
	}
	return sb.String()
}
