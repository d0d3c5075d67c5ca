package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *noteservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// wildcardPath extracts the path captured by a trailing "/*" route.
// Encoded slashes (topics%2Fnote.md) are accepted.
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "/" + raw
	}
	return "/" + decoded
}

func (h *Handler) requirePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	p := wildcardPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", false
	}
	return p, true
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListNotes(r.Context(), limit, offset, q.Get("tag"), q.Get("sort"))
	if err != nil {
		writeError(w, h.logger, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	note, err := h.svc.GetNote(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, "get note", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, h.logger, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/*. An If-Match header guards against
// lost updates.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	var req UpdateNoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)
	note, err := h.svc.UpdateNote(r.Context(), p, []byte(req.Content), ifMatch)
	if err != nil {
		writeError(w, h.logger, "update note", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/*.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteNote(r.Context(), p); err != nil {
		writeError(w, h.logger, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles POST /api/notes/move.
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	if err := h.svc.MoveNote(r.Context(), req.From, req.To); err != nil {
		writeError(w, h.logger, "move note", err)
		return
	}
	note, err := h.svc.GetNote(r.Context(), req.To)
	if err != nil {
		writeError(w, h.logger, "move note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// MoveDir handles POST /api/dirs/move.
func (h *Handler) MoveDir(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	if err := h.svc.MoveDir(r.Context(), req.From, req.To); err != nil {
		writeError(w, h.logger, "move dir", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDir handles DELETE /api/dirs/*.
func (h *Handler) DeleteDir(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteDir(r.Context(), p); err != nil {
		writeError(w, h.logger, "delete dir", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, h.logger, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Graph handles GET /api/graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.Graph(r.Context())
	if err != nil {
		writeError(w, h.logger, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Backlinks handles GET /api/backlinks/*.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	bl, err := h.svc.Backlinks(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, "backlinks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": p, "backlinks": bl})
}

// Tree handles GET /api/toc.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Tree(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, h.logger, "toc", err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// Calendar handles GET /api/calendar.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.svc.Calendar(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, h.logger, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": cal.Dates(), "events": cal})
}
