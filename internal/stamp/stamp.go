// Package stamp rewrites unstamped todos, questions, answers and today
// placeholders with the current date.
//
// A line receives every substitution that applies to it in one run, so a
// second run over stamped content never changes anything.
package stamp

import (
	"strings"

	"github.com/starford/quire/internal/pattern"
)

// Kind names the element a change was made to.
type Kind string

const (
	KindTodo     Kind = "todo"
	KindToday    Kind = "today"
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// Change records one substitution on one line.
type Change struct {
	Type       Kind   `json:"type"`
	LineNumber int    `json:"line_number"`
	Before     string `json:"before"`
	After      string `json:"after"`
}

// Options selects which elements are stamped.
type Options struct {
	Todos     bool `json:"todos"`
	Today     bool `json:"today"`
	Questions bool `json:"questions"`
	Answers   bool `json:"answers"`
}

// AllOptions enables every element class.
func AllOptions() Options {
	return Options{Todos: true, Today: true, Questions: true, Answers: true}
}

// Any reports whether at least one element class is enabled.
func (o Options) Any() bool {
	return o.Todos || o.Today || o.Questions || o.Answers
}

// candidate is a cheap pre-filter: lines that cannot hold any enabled
// element are skipped without parsing.
func (o Options) candidate(line string) bool {
	if o.Todos && strings.Contains(line, "[") {
		return true
	}
	if o.Today && strings.Contains(line, pattern.TodayToken) {
		return true
	}
	return (o.Questions && strings.Contains(line, "? ")) || (o.Answers && strings.Contains(line, "@ "))
}

type step struct {
	kind  Kind
	after string
}

// stampLine returns the successive states of line, one per substitution.
func stampLine(line string, opts Options, today string) []step {
	var steps []step
	cur := line

	if opts.Todos {
		if t, state := pattern.ClassifyTodo(cur); state != pattern.TodoNoMatch && state != pattern.TodoStamped {
			switch state {
			case pattern.TodoUnfinishedUnstamped:
				t.Stamp = pattern.Stamp{Start: today}
			case pattern.TodoFinishedStartOnly:
				t.Stamp.End = today
			case pattern.TodoFinishedUnstamped:
				t.Stamp = pattern.Stamp{Start: today, End: today}
			}
			cur = t.String()
			steps = append(steps, step{KindTodo, cur})
		}
	}

	if opts.Today && strings.Contains(cur, pattern.TodayToken) {
		cur = strings.ReplaceAll(cur, pattern.TodayToken, today)
		steps = append(steps, step{KindToday, cur})
	}

	if opts.Questions {
		if q, ok := pattern.ParseQuestion(cur); ok && !q.Stamped() {
			q.Date = today
			cur = q.String()
			steps = append(steps, step{KindQuestion, cur})
			return steps
		}
	}
	if opts.Answers {
		if a, ok := pattern.ParseAnswer(cur); ok && !a.Stamped() {
			a.Date = today
			cur = a.String()
			steps = append(steps, step{KindAnswer, cur})
		}
	}
	return steps
}

// StampText stamps raw with today's date and returns the new text and the
// changes made, in line order.
func StampText(raw string, opts Options, today string) (string, []Change) {
	if !opts.Any() {
		return raw, nil
	}
	lines := strings.Split(raw, "\n")
	var changes []Change
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		if !opts.candidate(body) {
			continue
		}
		steps := stampLine(body, opts, today)
		if len(steps) == 0 {
			continue
		}
		before := body
		for _, s := range steps {
			changes = append(changes, Change{Type: s.kind, LineNumber: i + 1, Before: before, After: s.after})
			before = s.after
		}
		if cr {
			before += "\r"
		}
		lines[i] = before
	}
	if len(changes) == 0 {
		return raw, nil
	}
	return strings.Join(lines, "\n"), changes
}
