package utils

import (
	"strings"
	"unicode"
)

// IsSnakeCase reports whether name uses only lower-case letters, digits and
// underscores. A leading underscore is allowed.
func IsSnakeCase(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			return false
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ToSnakeCase converts camelCase or PascalCase to snake_case.
// Example: "parseHeader" -> "parse_header", "HTTPServer" -> "http_server".
func ToSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
