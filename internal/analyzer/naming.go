package analyzer

import (
	"regexp"

	"github.com/funvibe/surf/internal/diagnostics"
	"github.com/funvibe/surf/internal/token"
	"github.com/funvibe/surf/internal/utils"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Names are emitted as C++ identifiers, so its reserved words are off limits.
var cppKeywords = map[string]bool{
	"alignas": true, "alignof": true, "and": true, "and_eq": true, "asm": true,
	"auto": true, "bitand": true, "bitor": true, "bool": true, "break": true,
	"case": true, "catch": true, "char": true, "char8_t": true, "char16_t": true,
	"char32_t": true, "class": true, "compl": true, "concept": true, "const": true,
	"consteval": true, "constexpr": true, "constinit": true, "const_cast": true,
	"continue": true, "co_await": true, "co_return": true, "co_yield": true,
	"decltype": true, "default": true, "delete": true, "do": true, "double": true,
	"dynamic_cast": true, "else": true, "enum": true, "explicit": true,
	"export": true, "extern": true, "false": true, "float": true, "for": true,
	"friend": true, "goto": true, "if": true, "inline": true, "int": true,
	"long": true, "mutable": true, "namespace": true, "new": true,
	"noexcept": true, "not": true, "not_eq": true, "nullptr": true,
	"operator": true, "or": true, "or_eq": true, "private": true,
	"protected": true, "public": true, "register": true,
	"reinterpret_cast": true, "requires": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "static_assert": true,
	"static_cast": true, "struct": true, "switch": true, "template": true,
	"this": true, "thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true, "xor": true, "xor_eq": true,
}

// isValidIdentifier checks the identifier shape and rejects C++ reserved words.
func isValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name) && !cppKeywords[name]
}

// checkIdentifier returns an InvalidIdentifier error for a bad declaration name.
// what names the kind of declaration ("function", "parameter", "variable").
func checkIdentifier(what, name string, tok token.Token) *diagnostics.DiagnosticError {
	if isValidIdentifier(name) {
		return nil
	}
	err := diagnostics.Errorf(diagnostics.ErrInvalidIdentifier, tok, "invalid %s name '%s'", what, name)
	if cppKeywords[name] {
		return err.WithHints("'" + name + "' is a reserved word of the target language")
	}
	return err.WithHints("Names must start with a letter or underscore and contain only letters, digits and underscores")
}

// checkStyle records a warning for names that are not snake_case.
func (a *Analyzer) checkStyle(what, name string, tok token.Token) {
	if utils.IsSnakeCase(name) {
		return
	}
	w := diagnostics.Errorf(diagnostics.WarnNaming, tok, "consider using snake case for %s names", what).
		WithHints("Rename '" + name + "' to '" + utils.ToSnakeCase(name) + "'")
	a.warnings = append(a.warnings, w)
}
