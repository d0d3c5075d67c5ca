package api

import (
	"net/http"
	"time"

	"github.com/starford/quire/internal/history"
)

// historyRef reads the path, ts and (optionally) type query parameters.
func historyRef(w http.ResponseWriter, r *http.Request, withType bool) (string, time.Time, history.DiffType, bool) {
	q := r.URL.Query()
	p := q.Get("path")
	if p == "" || q.Get("ts") == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and ts are required"))
		return "", time.Time{}, "", false
	}
	ts, err := parseTimestamp(q.Get("ts"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return "", time.Time{}, "", false
	}
	if !withType {
		return p, ts, "", true
	}
	typ, err := history.ParseDiffType(q.Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return "", time.Time{}, "", false
	}
	return p, ts, typ, true
}

// Versions handles GET /api/history/versions/*.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	versions, err := h.svc.Versions(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, "list versions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// Version handles GET /api/history/version?path=&ts=.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	p, ts, _, ok := historyRef(w, r, false)
	if !ok {
		return
	}
	content, err := h.svc.Version(r.Context(), p, ts)
	if err != nil {
		writeError(w, h.logger, "get version", err)
		return
	}
	writeJSON(w, http.StatusOK, VersionContent{
		Version: history.Version{NotePath: p, Timestamp: ts},
		Content: content,
	})
}

// Diffs handles GET /api/history/diffs/*.
func (h *Handler) Diffs(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	diffs, err := h.svc.Diffs(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, "list diffs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diffs": diffs})
}

// Diff handles GET /api/history/diff?path=&ts=&type=.
func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	p, ts, typ, ok := historyRef(w, r, true)
	if !ok {
		return
	}
	patch, err := h.svc.Diff(r.Context(), p, ts, typ)
	if err != nil {
		writeError(w, h.logger, "get diff", err)
		return
	}
	writeJSON(w, http.StatusOK, DiffContent{
		Diff:  history.Diff{NotePath: p, Timestamp: ts, Type: typ},
		Patch: patch,
	})
}

// Timeline handles GET /api/history/timeline/*.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.Timeline(r.Context(), p)
	if err != nil {
		writeError(w, h.logger, "timeline", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"timeline": entries})
}

// ContentAt handles GET /api/history/content?path=&ts=&type=.
func (h *Handler) ContentAt(w http.ResponseWriter, r *http.Request) {
	p, ts, typ, ok := historyRef(w, r, true)
	if !ok {
		return
	}
	content, err := h.svc.ContentAt(r.Context(), p, ts, typ)
	if err != nil {
		writeError(w, h.logger, "content at", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteState{
		Diff:    history.Diff{NotePath: p, Timestamp: ts, Type: typ},
		Content: content,
	})
}

// Purge handles DELETE /api/history/purge/*.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	p, ok := h.requirePath(w, r)
	if !ok {
		return
	}
	if err := h.svc.PurgeHistory(r.Context(), p); err != nil {
		writeError(w, h.logger, "purge history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
