package pattern

import (
	"fmt"
	"regexp"

	"github.com/starford/quire/internal/apperr"
)

// TodoStatus is the lifecycle state written in a todo's brackets.
type TodoStatus string

const (
	StatusIncomplete TodoStatus = "incomplete"
	StatusComplete   TodoStatus = "complete"
	StatusSkipped    TodoStatus = "skipped"
)

// ParseTodoStatus validates a status name.
func ParseTodoStatus(s string) (TodoStatus, error) {
	switch TodoStatus(s) {
	case StatusIncomplete, StatusComplete, StatusSkipped:
		return TodoStatus(s), nil
	}
	return "", fmt.Errorf("pattern: unknown todo status %q: %w", s, apperr.ErrInvalidArgument)
}

// Box returns the bracket content written for the status.
func (s TodoStatus) Box() string {
	switch s {
	case StatusComplete:
		return "X"
	case StatusSkipped:
		return "S"
	default:
		return " "
	}
}

// Finished reports whether the status closes the todo.
func (s TodoStatus) Finished() bool {
	return s == StatusComplete || s == StatusSkipped
}

func statusFromBox(box string) TodoStatus {
	switch box {
	case "X":
		return StatusComplete
	case "S":
		return StatusSkipped
	default:
		return StatusIncomplete
	}
}

// todoPrefixRe: indentation, optional list marker, then the bracket and a
// space or end of line.
var todoPrefixRe = regexp.MustCompile(`^(\s*(?:[-*+]\s+|\d+[.)]\s+)?)\[( |X|S|)\](?: |$)`)

// TodoLine is a parsed todo line.
type TodoLine struct {
	Prefix string // everything before "["
	Box    string // raw bracket content: "", " ", "X" or "S"
	Status TodoStatus
	Stamp  Stamp
	Text   string // text after the prefix and stamp
}

// ParseTodo parses line as a todo.
func ParseTodo(line string) (TodoLine, bool) {
	m := todoPrefixRe.FindStringSubmatch(line)
	if m == nil {
		return TodoLine{}, false
	}
	t := TodoLine{
		Prefix: m[1],
		Box:    m[2],
		Status: statusFromBox(m[2]),
	}
	rest := line[len(m[0]):]
	if st, after, ok := parseStamp(stampRe, rest); ok {
		t.Stamp = st
		rest = after
	}
	t.Text = rest
	return t, true
}

// String renders the todo with a normalised bracket.
func (t TodoLine) String() string {
	out := t.Prefix + "[" + t.Status.Box() + "]"
	if !t.Stamp.IsZero() {
		out += " " + t.Stamp.String()
	}
	if t.Text != "" {
		out += " " + t.Text
	}
	return out
}

// TodoState classifies a line for the stamping engine.
type TodoState int

const (
	// TodoNoMatch: the line is not a todo.
	TodoNoMatch TodoState = iota
	// TodoUnfinishedUnstamped: "[ ]" without a stamp.
	TodoUnfinishedUnstamped
	// TodoFinishedStartOnly: "[X]"/"[S]" with a start date but no end date.
	TodoFinishedStartOnly
	// TodoFinishedUnstamped: "[X]"/"[S]" without any stamp.
	TodoFinishedUnstamped
	// TodoStamped: nothing left to stamp.
	TodoStamped
)

func (s TodoState) String() string {
	switch s {
	case TodoUnfinishedUnstamped:
		return "unfinished-unstamped"
	case TodoFinishedStartOnly:
		return "finished-start-only"
	case TodoFinishedUnstamped:
		return "finished-unstamped"
	case TodoStamped:
		return "stamped"
	default:
		return "no-match"
	}
}

// ClassifyTodo parses line and reports its stamping state.
func ClassifyTodo(line string) (TodoLine, TodoState) {
	t, ok := ParseTodo(line)
	if !ok {
		return TodoLine{}, TodoNoMatch
	}
	switch {
	case !t.Status.Finished() && t.Stamp.IsZero():
		return t, TodoUnfinishedUnstamped
	case t.Status.Finished() && t.Stamp.IsZero():
		return t, TodoFinishedUnstamped
	case t.Status.Finished() && t.Stamp.End == "":
		return t, TodoFinishedStartOnly
	default:
		return t, TodoStamped
	}
}
