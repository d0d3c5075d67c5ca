package elements

import (
	"fmt"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/pattern"
)

// Question status filters.
const (
	QuestionsAnswered   = "answered"
	QuestionsUnanswered = "unanswered"
)

func isQALine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "? ") || strings.HasPrefix(trimmed, "@ ")
}

// Questions lists the questions under dir. A question is answered when the
// next question or answer line of the same note is an answer.
func (e *Extractor) Questions(status, dir string) ([]Question, error) {
	switch status {
	case "", StatusAll, QuestionsAnswered, QuestionsUnanswered:
	default:
		return nil, fmt.Errorf("elements: unknown question status %q: %w", status, apperr.ErrInvalidArgument)
	}

	var (
		all     []Question
		pending = -1 // index in all of the question awaiting an answer
		curPath string
	)
	err := e.scan(dir, isQALine, func(path string, number int, line string) {
		if path != curPath {
			curPath, pending = path, -1
		}
		if q, ok := pattern.ParseQuestion(line); ok {
			tags, text := pattern.ExtractTags(q.Text)
			all = append(all, Question{
				FilePath:     path,
				LineNumber:   number,
				Question:     strings.TrimSpace(text),
				QuestionDate: q.Date,
				Tags:         nonNil(tags),
			})
			pending = len(all) - 1
			return
		}
		if a, ok := pattern.ParseAnswer(line); ok && pending >= 0 {
			all[pending].Answer = strings.TrimSpace(a.Text)
			all[pending].AnswerDate = a.Date
			all[pending].answered = true
		}
		pending = -1
	})
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, q := range all {
		switch {
		case status == QuestionsAnswered && !q.Answered():
		case status == QuestionsUnanswered && q.Answered():
		default:
			out = append(out, q)
		}
	}
	return nonNil(out), nil
}
