package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/noteservice"
)

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// AuthEnabled enforces "Authorization: Bearer <Token>" on every route.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events behind the same auth.
	Events http.Handler
	Logger *slog.Logger
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *noteservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, cfg.Logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/move", h.MoveNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)
	r.Post("/dirs/move", h.MoveDir)
	r.Delete("/dirs/*", h.DeleteDir)

	// Elements.
	r.Get("/todos", h.Todos)
	r.Post("/todos/mark", h.MarkTodo)
	r.Get("/questions", h.Questions)
	r.Get("/definitions", h.Definitions)
	r.Get("/tags", h.Tags)
	r.Get("/links", h.Links)
	r.Get("/locations", h.Locations)
	r.Post("/stamp", h.Stamp)
	r.Post("/stamp/raw", h.StampRaw)

	// History.
	r.Route("/history", func(r chi.Router) {
		r.Get("/versions/*", h.Versions)
		r.Get("/version", h.Version)
		r.Get("/diffs/*", h.Diffs)
		r.Get("/diff", h.Diff)
		r.Get("/timeline/*", h.Timeline)
		r.Get("/content", h.ContentAt)
		r.Delete("/purge/*", h.Purge)
	})

	// Views and index.
	r.Get("/toc", h.Tree)
	r.Get("/calendar", h.Calendar)
	r.Get("/search", h.Search)
	r.Get("/graph", h.Graph)
	r.Get("/backlinks/*", h.Backlinks)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
