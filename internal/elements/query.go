package elements

import (
	"strings"
	"unicode"
)

// splitTerms splits a search query on whitespace. Double-quoted phrases are
// kept whole; an unterminated quote runs to the end of the query.
func splitTerms(q string) []string {
	var (
		terms   []string
		cur     strings.Builder
		inQuote bool
	)
	flush := func() {
		if cur.Len() > 0 {
			terms = append(terms, cur.String())
			cur.Reset()
		}
	}
	for _, r := range q {
		switch {
		case r == '"':
			flush()
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return terms
}

// matcher reports whether a line contains every term of a query.
type matcher struct {
	terms         []string
	caseSensitive bool
}

func newMatcher(query string, caseSensitive bool) matcher {
	terms := splitTerms(query)
	if !caseSensitive {
		for i, t := range terms {
			terms[i] = strings.ToLower(t)
		}
	}
	return matcher{terms: terms, caseSensitive: caseSensitive}
}

func (m matcher) match(line string) bool {
	if len(m.terms) == 0 {
		return true
	}
	if !m.caseSensitive {
		line = strings.ToLower(line)
	}
	for _, t := range m.terms {
		if !strings.Contains(line, t) {
			return false
		}
	}
	return true
}
