package pattern

import "regexp"

var (
	questionRe = regexp.MustCompile(`^(\s*)\? (.+)$`)
	answerRe   = regexp.MustCompile(`^(\s*)@ (.+)$`)
)

// QALine is a parsed question ("? ") or answer ("@ ") line.
type QALine struct {
	Indent string
	Marker string // "?" or "@"
	Date   string // empty when unstamped
	Text   string
}

// Stamped reports whether the line carries a date.
func (q QALine) Stamped() bool { return q.Date != "" }

// String renders the line with its stamp, if any.
func (q QALine) String() string {
	out := q.Indent + q.Marker + " "
	if q.Date != "" {
		out += "(" + q.Date + ")"
		if q.Text != "" {
			out += " "
		}
	}
	return out + q.Text
}

func parseQA(re *regexp.Regexp, marker, line string) (QALine, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return QALine{}, false
	}
	q := QALine{Indent: m[1], Marker: marker, Text: m[2]}
	if st, after, ok := parseStamp(singleStampRe, m[2]); ok {
		q.Date = st.Start
		q.Text = after
	}
	return q, true
}

// ParseQuestion parses a "? text" line.
func ParseQuestion(line string) (QALine, bool) {
	return parseQA(questionRe, "?", line)
}

// ParseAnswer parses an "@ text" line.
func ParseAnswer(line string) (QALine, bool) {
	return parseQA(answerRe, "@", line)
}
