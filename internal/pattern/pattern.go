// Package pattern is the line grammar of the note markup dialect.
//
// RE2 has no lookahead, so each element is parsed by a prefix expression
// followed by explicit stamp parsing. A todo, question or answer line is
// therefore either stamped or unstamped, never both, and the stamping engine
// and the extractors share the same parse.
package pattern

import (
	"regexp"
	"time"
)

// DateLayout is the stamp date format.
const DateLayout = "2006-01-02"

// TodayToken is replaced by the current date when a note is stamped.
const TodayToken = `\today`

const datePattern = `[12]\d{3}-\d{2}-\d{2}`

var (
	dateRe = regexp.MustCompile(`^` + datePattern + `$`)

	// stampRe matches "(DATE)" or "(DATE -> DATE)" followed by a space or the end of the line.
	stampRe = regexp.MustCompile(`^\((` + datePattern + `)(?: -> (` + datePattern + `))?\)(?: |$)`)

	// singleStampRe is the question/answer variant: start date only.
	singleStampRe = regexp.MustCompile(`^\((` + datePattern + `)\)(?: |$)`)
)

// IsDate reports whether s is a syntactically valid stamp date.
func IsDate(s string) bool {
	return dateRe.MatchString(s)
}

// FormatDate renders t as a stamp date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Stamp is a parsed "(start)" or "(start -> end)" annotation.
type Stamp struct {
	Start string
	End   string
}

// IsZero reports whether the stamp is absent.
func (s Stamp) IsZero() bool { return s.Start == "" }

// String renders the stamp in its parenthesised form.
func (s Stamp) String() string {
	if s.End == "" {
		return "(" + s.Start + ")"
	}
	return "(" + s.Start + " -> " + s.End + ")"
}

// parseStamp reads a stamp at the start of rest. It returns the remaining
// text with the single separating space removed.
func parseStamp(re *regexp.Regexp, rest string) (Stamp, string, bool) {
	m := re.FindStringSubmatch(rest)
	if m == nil {
		return Stamp{}, rest, false
	}
	st := Stamp{Start: m[1]}
	if len(m) > 2 {
		st.End = m[2]
	}
	return st, rest[len(m[0]):], true
}
