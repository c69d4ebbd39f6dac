// Package normalize implements the single text transform shared by every
// write path into the lexical index and every query path reading from it.
// Using anything other than Text here to reach FTS5 is a bug: it is the
// one safety barrier against FTS query-syntax injection (see SPEC_FULL.md
// §4.3 / §9 "FTS injection").
package normalize

import (
	"strings"
	"unicode"
)

// ftsReserved are the characters SQLite's FTS5 query syntax treats
// specially. Stripping them before they reach MATCH means a search term
// typed by a user (or pulled verbatim from a chunk's identifier) can never
// be interpreted as FTS5 syntax.
const ftsReserved = `"*^:(){}[]-+~`

// Text splits identifiers on case and underscore boundaries, lowercases,
// strips lexical-engine-reserved characters, and collapses whitespace.
//
// Text is idempotent: Text(Text(x)) == Text(x). Splitting only inserts
// spaces at boundaries that no longer exist once the input is already all
// lowercase and space-separated, and stripping/collapsing a second time is
// a no-op on output that already satisfies those properties.
func Text(s string) string {
	split := splitIdentifiers(s)
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(ftsReserved, r) {
			return ' '
		}
		return r
	}, split)
	lowered := strings.ToLower(stripped)
	return collapseWhitespace(lowered)
}

// splitIdentifiers inserts a space at camelCase and snake_case/kebab-case
// boundaries so "searchFiltered" and "search_filtered" both normalize to
// "search filtered".
func splitIdentifiers(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			continue
		case i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) && unicode.IsLetter(runes[i-1]):
			// lower->upper boundary: "fooBar" -> "foo Bar"
			b.WriteRune(' ')
		case i > 0 && i+1 < len(runes) && unicode.IsUpper(r) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1]):
			// acronym->word boundary: "HTTPServer" -> "HTTP Server"
			b.WriteRune(' ')
		case i > 0 && unicode.IsDigit(r) != unicode.IsDigit(runes[i-1]) && (unicode.IsLetter(r) || unicode.IsLetter(runes[i-1])):
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
