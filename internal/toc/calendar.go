package toc

import (
	"sort"

	"github.com/starford/quire/internal/elements"
)

// EventKind is what happened on a calendar day.
type EventKind string

const (
	EventTodoStart EventKind = "todo_start"
	EventTodoEnd   EventKind = "todo_end"
	EventQuestion  EventKind = "question"
	EventAnswer    EventKind = "answer"
)

// Event is one dated element.
type Event struct {
	Kind       EventKind `json:"kind"`
	FilePath   string    `json:"file_path"`
	LineNumber int       `json:"line_number"`
	Text       string    `json:"text"`
}

// Calendar maps stamp dates to the events on them.
type Calendar map[string][]Event

// Dates returns the calendar days in ascending order.
func (c Calendar) Dates() []string {
	out := make([]string, 0, len(c))
	for d := range c {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (c Calendar) add(date string, ev Event) {
	if date == "" {
		return
	}
	c[date] = append(c[date], ev)
}

// Calendar collects the dated todos, questions and answers under dir.
// Future-dated todos are included.
func (b *Builder) Calendar(dir string) (Calendar, error) {
	todos, err := b.extractor.Todos(elements.TodoQuery{Dir: dir})
	if err != nil {
		return nil, err
	}
	questions, err := b.extractor.Questions(elements.StatusAll, dir)
	if err != nil {
		return nil, err
	}

	cal := Calendar{}
	for _, t := range todos {
		cal.add(t.StartDate, Event{Kind: EventTodoStart, FilePath: t.FilePath, LineNumber: t.LineNumber, Text: t.Text})
		cal.add(t.EndDate, Event{Kind: EventTodoEnd, FilePath: t.FilePath, LineNumber: t.LineNumber, Text: t.Text})
	}
	for _, q := range questions {
		cal.add(q.QuestionDate, Event{Kind: EventQuestion, FilePath: q.FilePath, LineNumber: q.LineNumber, Text: q.Question})
		cal.add(q.AnswerDate, Event{Kind: EventAnswer, FilePath: q.FilePath, LineNumber: q.LineNumber, Text: q.Answer})
	}
	return cal, nil
}
