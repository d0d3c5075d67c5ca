package elements

import "github.com/starford/quire/internal/pattern"

// Todo is one todo line.
type Todo struct {
	FilePath   string             `json:"file_path"`
	LineNumber int                `json:"line_number"`
	Status     pattern.TodoStatus `json:"status"`
	StartDate  string             `json:"start_date,omitempty"`
	EndDate    string             `json:"end_date,omitempty"`
	Text       string             `json:"todo_text"`
	Tags       []string           `json:"tags"`
	Raw        string             `json:"raw"`
}

// Question is a question line and the answer that follows it, if any.
type Question struct {
	FilePath     string   `json:"file_path"`
	LineNumber   int      `json:"line_number"`
	Question     string   `json:"question"`
	QuestionDate string   `json:"question_date,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	AnswerDate   string   `json:"answer_date,omitempty"`
	Tags         []string `json:"tags"`

	answered bool
}

// Answered reports whether an answer line was paired with the question,
// even one carrying only a stamp.
func (q Question) Answered() bool { return q.answered }

// Definition is a "{term} definition" line.
type Definition struct {
	FilePath    string   `json:"file_path"`
	LineNumber  int      `json:"line_number"`
	Term        string   `json:"term"`
	Definition  string   `json:"definition"`
	SubElements []string `json:"sub_elements,omitempty"`
}

// Link is a Markdown link between notes, or to the web.
type Link struct {
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	Source     string `json:"source"`
	Target     string `json:"target"`
	Text       string `json:"text"`
	Internal   bool   `json:"internal"`
	Valid      bool   `json:"valid"`
}

// Location is a GPS annotation.
type Location struct {
	FilePath   string  `json:"file_path"`
	LineNumber int     `json:"line_number"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Name       string  `json:"name"`
}
