package app

import (
	"strings"
	"unicode/utf8"
)

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses whitespace and masks quoted literals so identities
// typed into ad-hoc SQL never reach span attributes. Bound parameters are untouched.
func formatDBQueryForTrace(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'' && inLiteral:
			inLiteral = false
		case r == '\'':
			inLiteral = true
			b.WriteByte('?')
		case !inLiteral:
			b.WriteRune(r)
		}
	}

	masked := b.String()
	if len(masked) <= maxTracedQueryLength {
		return masked
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(masked[cut]) {
		cut--
	}
	return masked[:cut] + "..."
}
