// Package naming converts identifiers between underscored and camel case.
//
// The two conversions follow a naming convention rather than a grammar and are
// not inverses of each other for arbitrary input.
package naming

import (
	"strings"
	"unicode"
)

// UnderscoreToCamel turns foo_bar into fooBar. A doubled underscore is an
// escape for a literal underscore and still upper-cases the next character,
// so foo__bar becomes foo_Bar. A trailing underscore is kept.
func UnderscoreToCamel(s string) string {
	if s == "" || !strings.Contains(s, "_") {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	pending := false

	for _, r := range s {
		switch {
		case r == '_':
			if pending {
				sb.WriteRune('_')
			} else {
				pending = true
			}
		case pending:
			sb.WriteRune(unicode.ToUpper(r))
			pending = false
		default:
			sb.WriteRune(r)
		}
	}

	if pending {
		sb.WriteRune('_')
	}
	return sb.String()
}

// CamelToUnderscore turns fooBar into foo_bar. The first character is never
// touched, and strings with no upper-case letter after it come back as is.
func CamelToUnderscore(s string) string {
	runes := []rune(s)
	if len(runes) < 2 || !hasUpperAfterFirst(runes) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 4)
	sb.WriteRune(runes[0])

	for _, r := range runes[1:] {
		if isUpper(r) {
			sb.WriteRune('_')
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func hasUpperAfterFirst(runes []rune) bool {
	for _, r := range runes[1:] {
		if isUpper(r) {
			return true
		}
	}
	return false
}

// isUpper reports a letter that has a distinct lower-case form.
func isUpper(r rune) bool {
	return r == unicode.ToUpper(r) && r != unicode.ToLower(r)
}
