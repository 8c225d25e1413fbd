package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/surf/internal/token"
)

type ErrorCode string

const (
	ErrLex                  ErrorCode = "LexError"
	ErrSyntax               ErrorCode = "SyntaxError"
	ErrUnterminatedFunction ErrorCode = "UnterminatedFunction"
	ErrMalformedType        ErrorCode = "MalformedType"
	ErrImportNotFound       ErrorCode = "ImportNotFound"
	ErrInvalidHeader        ErrorCode = "InvalidHeader"
	ErrCircularDependency   ErrorCode = "CircularDependency"
	ErrDuplicateDefinition  ErrorCode = "DuplicateDefinition"
	ErrInvalidIdentifier    ErrorCode = "InvalidIdentifier"
	ErrArityMismatch        ErrorCode = "ArityMismatch"
	ErrUnknownType          ErrorCode = "UnknownType"
	ErrScopeCollision       ErrorCode = "ScopeCollision"
	ErrInvalidReference     ErrorCode = "InvalidReference"
	ErrInvalidReturn        ErrorCode = "InvalidReturn"
	ErrDanglingReference    ErrorCode = "DanglingReference"
	ErrMissingOrInvalidMain ErrorCode = "MissingOrInvalidMain"
	ErrConfig               ErrorCode = "ConfigError"
	ErrInternal             ErrorCode = "InternalError"

	// WarnNaming marks style warnings; it never stops a build.
	WarnNaming ErrorCode = "NamingStyle"
)

// DiagnosticError is the single error type produced by every stage.
// Trace is a file:line:column location; Chain is an import chain, outermost first.
type DiagnosticError struct {
	Code    ErrorCode
	Message string
	Hints   []string
	Token   token.Token
	Trace   string
	Chain   []string
	Err     error
}

func (e *DiagnosticError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))
	if e.Trace != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Trace)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Chain) > 0 {
		sb.WriteString(" (chain: ")
		sb.WriteString(strings.Join(e.Chain, " -> "))
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// NewError builds an error located at tok. A zero token leaves the trace empty.
func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	err := &DiagnosticError{Code: code, Message: msg, Token: tok}
	if tok.Line > 0 {
		err.Trace = tok.Trace()
	}
	return err
}

// Errorf is NewError with formatting.
func Errorf(code ErrorCode, tok token.Token, format string, args ...any) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

// Wrap attaches a cause to a new diagnostic without a source location.
func Wrap(err error, code ErrorCode, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Message: msg, Err: err}
}

func (e *DiagnosticError) WithHints(hints ...string) *DiagnosticError {
	e.Hints = append(e.Hints, hints...)
	return e
}

func (e *DiagnosticError) WithChain(chain []string) *DiagnosticError {
	e.Chain = append([]string(nil), chain...)
	return e
}

func (e *DiagnosticError) WithTrace(trace string) *DiagnosticError {
	e.Trace = trace
	return e
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// As extracts the diagnostic from err. Errors that did not originate in a
// stage (I/O failures and the like) come back as ErrInternal.
func As(err error) *DiagnosticError {
	if err == nil {
		return nil
	}
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de
	}
	return &DiagnosticError{Code: ErrInternal, Message: "internal failure", Err: err}
}

// ChainTrace renders an import chain the way it is printed to users:
// one line per link, each indented one space deeper than the previous.
func ChainTrace(chain []string) []string {
	lines := make([]string, 0, len(chain))
	for i, link := range chain {
		lines = append(lines, strings.Repeat(" ", i)+"-> "+token.DisplayPath(link))
	}
	return lines
}
