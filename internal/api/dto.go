package api

import (
	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/stamp"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"projects/plan.md"`
	Content string `json:"content" example:"# Plan\n- [ ] write it"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// MoveRequest moves a note or a directory.
type MoveRequest struct {
	From string `json:"from" example:"inbox/plan.md"`
	To   string `json:"to" example:"projects/plan.md"`
}

// MarkTodoRequest sets the status of one to-do.
type MarkTodoRequest struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Status string `json:"status" example:"complete"`
}

// MarkTodoResponse carries the rewritten line.
type MarkTodoResponse struct {
	Path string `json:"path"`
	Line string `json:"line"`
}

// StampFlags selects element classes; an omitted flag counts as enabled.
type StampFlags struct {
	Todos     *bool `json:"todos,omitempty"`
	Today     *bool `json:"today,omitempty"`
	Questions *bool `json:"questions,omitempty"`
	Answers   *bool `json:"answers,omitempty"`
}

func (f StampFlags) options() stamp.Options {
	on := func(p *bool) bool { return p == nil || *p }
	return stamp.Options{
		Todos:     on(f.Todos),
		Today:     on(f.Today),
		Questions: on(f.Questions),
		Answers:   on(f.Answers),
	}
}

// StampRequest stamps the notes under Dir.
type StampRequest struct {
	Dir string `json:"dir" example:"/"`
	StampFlags
}

// StampResponse maps note paths to the changes made in them.
type StampResponse struct {
	Changes map[string][]stamp.Change `json:"changes"`
}

// StampRawRequest stamps free text.
type StampRawRequest struct {
	Text string `json:"text"`
	StampFlags
}

// StampRawResponse is the stamped text and its changes.
type StampRawResponse struct {
	Text    string         `json:"text"`
	Changes []stamp.Change `json:"changes"`
}

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []models.NoteSummary `json:"notes"`
	Total int                  `json:"total"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// GraphResponse is the note link graph.
type GraphResponse struct {
	Nodes []index.GraphNode `json:"nodes"`
	Links []index.GraphLink `json:"links"`
}

// TodosResponse wraps a to-do listing.
type TodosResponse struct {
	Todos []elements.Todo `json:"todos"`
}

// QuestionsResponse wraps a question listing.
type QuestionsResponse struct {
	Questions []elements.Question `json:"questions"`
}

// DefinitionsResponse wraps a definition listing.
type DefinitionsResponse struct {
	Definitions []elements.Definition `json:"definitions"`
}

// TagsResponse wraps the tag list.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// LinksResponse wraps a link listing.
type LinksResponse struct {
	Links []elements.Link `json:"links"`
}

// LocationsResponse wraps a location listing.
type LocationsResponse struct {
	Locations []elements.Location `json:"locations"`
}

// VersionContent is one stored version.
type VersionContent struct {
	history.Version
	Content string `json:"content"`
}

// DiffContent is one stored patch.
type DiffContent struct {
	history.Diff
	Patch string `json:"patch"`
}

// NoteState is a note rebuilt right after a diff.
type NoteState struct {
	history.Diff
	Content string `json:"content"`
}
