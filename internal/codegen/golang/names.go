package golang

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// namer builds Go identifiers from query, parameter and column names. A
// cases.Caser is stateful, so each render gets its own namer.
type namer struct {
	title cases.Caser
}

func newNamer() *namer {
	return &namer{title: cases.Title(language.Und, cases.NoLower)}
}

// exported turns "user_id", "userId" or "UserID" into "UserID".
func (n *namer) exported(s string) string {
	var result strings.Builder
	for _, word := range splitWords(s) {
		upper := strings.ToUpper(word)
		if isCommonInitialism(upper) {
			result.WriteString(upper)
		} else {
			result.WriteString(n.title.String(word))
		}
	}

	name := result.String()
	if name == "" {
		return "X"
	}
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		name = "X" + name
	}
	return name
}

// unexported lower-cases the leading word of an exported name, keeping
// initialisms together: "UserID" becomes "userID", "IDCard" becomes "idCard".
func (n *namer) unexported(s string) string {
	name := n.exported(s)
	runes := []rune(name)

	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}
	if i == 0 {
		return name
	}
	if i > 1 && i < len(runes) {
		i-- // the last upper letter starts the next word
	}

	for j := 0; j < i; j++ {
		runes[j] = unicode.ToLower(runes[j])
	}
	name = string(runes)
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// splitWords breaks an identifier at underscores, dashes and lower-to-upper
// case changes. Characters Go does not allow in identifiers are dropped.
func splitWords(s string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

// goString quotes s as a raw string literal when it can.
func goString(s string) string {
	if !strings.Contains(s, "`") && !strings.ContainsRune(s, '\r') {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

func isCommonInitialism(s string) bool {
	initialisms := map[string]bool{
		"ID": true, "URL": true, "URI": true, "API": true, "HTTP": true,
		"HTTPS": true, "HTML": true, "JSON": true, "XML": true, "UUID": true,
		"SQL": true, "SSH": true, "TCP": true, "UDP": true, "IP": true,
		"DNS": true, "TLS": true, "SSL": true, "EOF": true, "ASCII": true,
		"CPU": true, "CSS": true, "RAM": true, "RPC": true, "SLA": true,
		"SMTP": true, "TTL": true, "UID": true, "UI": true, "UTF8": true,
	}
	return initialisms[s]
}
