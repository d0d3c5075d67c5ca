package api

import (
	"net/http"

	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/pattern"
)

// Todos handles GET /api/todos.
//
// Query: status, dir, query, case_sensitive, sort_by, tag, suppress_future.
// suppress_future falls back to the configured default when absent.
func (h *Handler) Todos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	caseSensitive, err := queryBool(r, "case_sensitive")
	if err != nil {
		writeError(w, h.logger, "todos", err)
		return
	}
	suppress, err := queryBool(r, "suppress_future")
	if err != nil {
		writeError(w, h.logger, "todos", err)
		return
	}
	todos, err := h.svc.Todos(r.Context(), elements.TodoQuery{
		Status:        q.Get("status"),
		Dir:           q.Get("dir"),
		Query:         q.Get("query"),
		CaseSensitive: flag(caseSensitive),
		SortBy:        q.Get("sort_by"),
		Tag:           q.Get("tag"),
	}, suppress)
	if err != nil {
		writeError(w, h.logger, "todos", err)
		return
	}
	writeJSON(w, http.StatusOK, TodosResponse{Todos: todos})
}

// MarkTodo handles POST /api/todos/mark.
func (h *Handler) MarkTodo(w http.ResponseWriter, r *http.Request) {
	var req MarkTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status, err := pattern.ParseTodoStatus(req.Status)
	if err != nil {
		writeError(w, h.logger, "mark todo", err)
		return
	}
	line, err := h.svc.MarkTodo(r.Context(), req.Path, req.Line, status)
	if err != nil {
		writeError(w, h.logger, "mark todo", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkTodoResponse{Path: req.Path, Line: line})
}

// Questions handles GET /api/questions.
func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	questions, err := h.svc.Questions(r.Context(), q.Get("status"), q.Get("dir"))
	if err != nil {
		writeError(w, h.logger, "questions", err)
		return
	}
	writeJSON(w, http.StatusOK, QuestionsResponse{Questions: questions})
}

// Definitions handles GET /api/definitions.
func (h *Handler) Definitions(w http.ResponseWriter, r *http.Request) {
	sub, err := queryBool(r, "sub_elements")
	if err != nil {
		writeError(w, h.logger, "definitions", err)
		return
	}
	defs, err := h.svc.Definitions(r.Context(), r.URL.Query().Get("dir"), flag(sub))
	if err != nil {
		writeError(w, h.logger, "definitions", err)
		return
	}
	writeJSON(w, http.StatusOK, DefinitionsResponse{Definitions: defs})
}

// Tags handles GET /api/tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Tags(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, h.logger, "tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// Links handles GET /api/links.
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	external, err := queryBool(r, "include_external")
	if err != nil {
		writeError(w, h.logger, "links", err)
		return
	}
	invalid, err := queryBool(r, "include_invalid")
	if err != nil {
		writeError(w, h.logger, "links", err)
		return
	}
	links, err := h.svc.Links(r.Context(), elements.LinkQuery{
		Source:          q.Get("source"),
		Target:          q.Get("target"),
		Note:            q.Get("note"),
		IncludeExternal: flag(external),
		IncludeInvalid:  flag(invalid),
	})
	if err != nil {
		writeError(w, h.logger, "links", err)
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Links: links})
}

// Locations handles GET /api/locations.
func (h *Handler) Locations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.svc.Locations(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, h.logger, "locations", err)
		return
	}
	writeJSON(w, http.StatusOK, LocationsResponse{Locations: locs})
}

// Stamp handles POST /api/stamp.
func (h *Handler) Stamp(w http.ResponseWriter, r *http.Request) {
	var req StampRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changes, err := h.svc.Stamp(r.Context(), req.Dir, req.options())
	if err != nil {
		writeError(w, h.logger, "stamp", err)
		return
	}
	writeJSON(w, http.StatusOK, StampResponse{Changes: changes})
}

// StampRaw handles POST /api/stamp/raw.
func (h *Handler) StampRaw(w http.ResponseWriter, r *http.Request) {
	var req StampRawRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, changes := h.svc.StampText(req.Text, req.options())
	writeJSON(w, http.StatusOK, StampRawResponse{Text: text, Changes: changes})
}
