package elements

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/pattern"
)

// StatusAll disables the status filter of a todo or question scan.
const StatusAll = "all"

// SortStartDate orders todos by start date, newest first.
const SortStartDate = "start_date"

// TodoQuery filters a todo scan. The zero value lists every todo in the tree.
type TodoQuery struct {
	Status         string // "", "all", "incomplete", "complete" or "skipped"
	Dir            string
	Query          string
	CaseSensitive  bool
	SortBy         string // "" or SortStartDate
	SuppressFuture bool
	Tag            string
}

func (q TodoQuery) status() (pattern.TodoStatus, error) {
	if q.Status == "" || q.Status == StatusAll {
		return "", nil
	}
	return pattern.ParseTodoStatus(q.Status)
}

// Todos lists the todos matching q.
func (e *Extractor) Todos(q TodoQuery) ([]Todo, error) {
	want, err := q.status()
	if err != nil {
		return nil, err
	}
	if q.SortBy != "" && q.SortBy != SortStartDate {
		return nil, fmt.Errorf("elements: unknown sort %q: %w", q.SortBy, apperr.ErrInvalidArgument)
	}
	m := newMatcher(q.Query, q.CaseSensitive)
	today := e.today()

	var out []Todo
	err = e.scan(q.Dir, m.match, func(path string, number int, line string) {
		t, ok := pattern.ParseTodo(line)
		if !ok {
			return
		}
		if want != "" && t.Status != want {
			return
		}
		if q.Tag != "" && !pattern.HasTag(t.Text, q.Tag) {
			return
		}
		if q.SuppressFuture && t.Stamp.Start > today {
			return
		}
		tags, text := pattern.ExtractTags(t.Text)
		out = append(out, Todo{
			FilePath:   path,
			LineNumber: number,
			Status:     t.Status,
			StartDate:  t.Stamp.Start,
			EndDate:    t.Stamp.End,
			Text:       strings.TrimSpace(text),
			Tags:       nonNil(tags),
			Raw:        line,
		})
	})
	if err != nil {
		return nil, err
	}
	if q.SortBy == SortStartDate {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].StartDate > out[j].StartDate
		})
	}
	return nonNil(out), nil
}

// MarkTodoLine rewrites the status letter of the todo on line (1-based) in
// content. It returns the new content and the updated line.
func MarkTodoLine(content string, line int, status pattern.TodoStatus) (string, string, error) {
	lines := SplitLines(content)
	if line < 1 || line > len(lines) {
		return "", "", fmt.Errorf("elements: line %d: %w", line, apperr.ErrNotFound)
	}
	raw := lines[line-1]
	cr := strings.HasSuffix(raw, "\r")
	raw = strings.TrimSuffix(raw, "\r")
	t, ok := pattern.ParseTodo(raw)
	if !ok {
		return "", "", fmt.Errorf("elements: line %d is not a todo: %w", line, apperr.ErrInvalidArgument)
	}
	// Only the bracket is replaced; "[]" widens to "[ ]".
	rest := raw[len(t.Prefix)+len(t.Box)+2:]
	updated := t.Prefix + "[" + status.Box() + "]" + rest
	if cr {
		lines[line-1] = updated + "\r"
	} else {
		lines[line-1] = updated
	}
	return JoinLines(lines), updated, nil
}

// MarkTodo sets the status of the todo at path:line and writes the note back.
func (e *Extractor) MarkTodo(path string, line int, status pattern.TodoStatus) (string, error) {
	data, err := e.store.Read(path)
	if err != nil {
		return "", fmt.Errorf("elements: mark todo: %w", err)
	}
	content, updated, err := MarkTodoLine(string(data), line, status)
	if err != nil {
		return "", err
	}
	if content != string(data) {
		if err := e.store.Write(path, []byte(content)); err != nil {
			return "", fmt.Errorf("elements: mark todo: %w", err)
		}
	}
	return updated, nil
}
