// Package noteservice coordinates note mutations across storage, edit
// history, the search index and the live event stream. Mutations are
// serialised by a single mutex.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/stamp"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/toc"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishChange(c sse.Change)
	Publish(e sse.Event)
}

// Service is the note facade used by the HTTP API, the MCP server and the CLI.
type Service struct {
	store    *storage.FS
	hist     *history.Engine
	db       index.NoteIndex
	events   Publisher
	ext      *elements.Extractor
	stamper  *stamp.Stamper
	toc      *toc.Builder
	now      func() time.Time
	logger   *slog.Logger
	mu       sync.Mutex
	flight   singleflight.Group
	suppress atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithIndex keeps idx in step with every mutation and enables search,
// listing and backlinks.
func WithIndex(idx index.NoteIndex) Option {
	return func(s *Service) { s.db = idx }
}

// WithPublisher sends change events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock overrides the clock used for today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithSuppressFuture sets the default for hiding to-dos that start after today.
func WithSuppressFuture(v bool) Option {
	return func(s *Service) { s.suppress.Store(v) }
}

// New creates a Service over store with history recorded by hist.
func New(store *storage.FS, hist *history.Engine, opts ...Option) *Service {
	s := &Service{
		store:  store,
		hist:   hist,
		now:    time.Now,
		logger: slog.Default(),
	}
	s.suppress.Store(true)
	for _, opt := range opts {
		opt(s)
	}
	s.ext = elements.New(store, elements.WithClock(s.now))
	s.stamper = stamp.New(store,
		stamp.WithClock(s.now),
		stamp.WithWriter(s.writeTracked),
		stamp.WithLogger(s.logger),
	)
	s.toc = toc.New(store, s.ext)
	return s
}

// SuppressFuture reports the current default for hiding future to-dos.
func (s *Service) SuppressFuture() bool { return s.suppress.Load() }

// SetSuppressFuture changes the default for hiding future to-dos.
func (s *Service) SetSuppressFuture(v bool) { s.suppress.Store(v) }

// mutablePath cleans p and rejects non-note and hidden paths.
func (s *Service) mutablePath(p string) (string, error) {
	p = storage.Clean(p)
	if !s.store.IsNotePath(p) {
		return "", fmt.Errorf("noteservice: not a note path: %s: %w", p, apperr.ErrInvalidArgument)
	}
	if storage.Hidden(p) {
		return "", fmt.Errorf("noteservice: hidden path: %s: %w", p, apperr.ErrInvalidArgument)
	}
	return p, nil
}

func (s *Service) mutableDir(dir string) (string, error) {
	dir = storage.Clean(dir)
	if dir == "/" {
		return "", fmt.Errorf("noteservice: the notes root cannot be moved or deleted: %w", apperr.ErrInvalidArgument)
	}
	if storage.Hidden(dir) {
		return "", fmt.Errorf("noteservice: hidden path: %s: %w", dir, apperr.ErrInvalidArgument)
	}
	return dir, nil
}

// GetNote reads a note and enriches it with its parsed facts and backlinks.
func (s *Service) GetNote(_ context.Context, p string) (*models.Note, error) {
	p = storage.Clean(p)
	data, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	return s.buildNote(p, data)
}

// CreateNote writes a new note and records its creation.
func (s *Service) CreateNote(_ context.Context, p string, content []byte) (*models.Note, error) {
	p, err := s.mutablePath(p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Create(p, content); err != nil {
		return nil, err
	}
	if err := s.hist.RecordCreate(p); err != nil {
		return nil, err
	}
	metrics.NoteMutations.WithLabelValues("create").Inc()
	s.reindex(p, content)
	s.publish(sse.Change{Kind: index.EventCreated, Path: p})
	return s.buildNote(p, content)
}

// UpdateNote replaces the content of a note. A non-empty ifMatch must equal
// the current checksum.
func (s *Service) UpdateNote(_ context.Context, p string, content []byte, ifMatch string) (*models.Note, error) {
	p, err := s.mutablePath(p)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Read(p)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != storage.Checksum(existing) {
		return nil, fmt.Errorf("noteservice: %s changed since it was read: %w", p, apperr.ErrConflict)
	}
	if string(existing) != string(content) {
		if err := s.writeTracked(p, content); err != nil {
			return nil, err
		}
	}
	return s.buildNote(p, content)
}

// DeleteNote records the deletion of a note and removes it.
func (s *Service) DeleteNote(_ context.Context, p string) error {
	p, err := s.mutablePath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Exists(p) {
		return fmt.Errorf("noteservice: %s: %w", p, apperr.ErrNotFound)
	}
	if err := s.hist.RecordDelete(p); err != nil {
		return err
	}
	if err := s.store.Delete(p); err != nil {
		return err
	}
	metrics.NoteMutations.WithLabelValues("delete").Inc()
	s.unindex(p)
	s.publish(sse.Change{Kind: index.EventDeleted, Path: p})
	return nil
}

// MoveNote renames a note and records the move under both paths.
func (s *Service) MoveNote(_ context.Context, oldPath, newPath string) error {
	oldPath, err := s.mutablePath(oldPath)
	if err != nil {
		return err
	}
	newPath, err = s.mutablePath(newPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Exists(oldPath) {
		return fmt.Errorf("noteservice: %s: %w", oldPath, apperr.ErrNotFound)
	}
	if err := s.hist.EnsureVersion(oldPath, s.hist.Now()); err != nil {
		return err
	}
	if err := s.store.Move(oldPath, newPath); err != nil {
		return err
	}
	if err := s.hist.RecordMove(oldPath, newPath); err != nil {
		return err
	}
	metrics.NoteMutations.WithLabelValues("move").Inc()
	s.moved(oldPath, newPath)
	return nil
}

// MoveDir renames a directory and records a move for every note below it.
func (s *Service) MoveDir(_ context.Context, oldDir, newDir string) error {
	oldDir, err := s.mutableDir(oldDir)
	if err != nil {
		return err
	}
	newDir, err = s.mutableDir(newDir)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.hist.EnsureVersionDir(oldDir); err != nil {
		return err
	}
	if err := s.store.Move(oldDir, newDir); err != nil {
		return err
	}
	if err := s.hist.MoveDir(oldDir, newDir); err != nil {
		return err
	}
	paths, err := s.store.Paths(newDir)
	if err != nil {
		return err
	}
	metrics.NoteMutations.WithLabelValues("move_dir").Inc()
	for _, p := range paths {
		s.moved(oldDir+p[len(newDir):], p)
	}
	return nil
}

// DeleteDir records the deletion of every note under dir and removes it.
func (s *Service) DeleteDir(_ context.Context, dir string) error {
	dir, err := s.mutableDir(dir)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := s.store.Paths(dir)
	if err != nil {
		return err
	}
	if err := s.hist.DeleteDir(dir); err != nil {
		return err
	}
	if err := s.store.RemoveAll(dir); err != nil {
		return err
	}
	metrics.NoteMutations.WithLabelValues("delete_dir").Inc()
	for _, p := range paths {
		s.unindex(p)
		s.publish(sse.Change{Kind: index.EventDeleted, Path: p})
	}
	return nil
}

// writeTracked records an edit and replaces the note. Callers hold s.mu.
func (s *Service) writeTracked(p string, content []byte) error {
	if err := s.hist.RecordEdit(p, string(content)); err != nil {
		return err
	}
	if err := s.store.Write(p, content); err != nil {
		return err
	}
	metrics.NoteMutations.WithLabelValues("edit").Inc()
	s.reindex(p, content)
	s.publish(sse.Change{Kind: index.EventUpdated, Path: p})
	return nil
}

func (s *Service) moved(oldPath, newPath string) {
	s.unindex(oldPath)
	if data, err := s.store.Read(newPath); err == nil {
		s.reindex(newPath, data)
	}
	s.publish(sse.Change{Kind: "moved", Path: newPath, From: oldPath})
}

func (s *Service) reindex(p string, data []byte) {
	if s.db == nil {
		return
	}
	if err := index.IndexFile(s.db, p, data, s.now()); err != nil {
		s.logger.Warn("noteservice: index failed", slog.String("path", p), slog.String("error", err.Error()))
	}
}

func (s *Service) unindex(p string) {
	if s.db == nil {
		return
	}
	if err := s.db.DeleteNote(p); err != nil {
		s.logger.Warn("noteservice: unindex failed", slog.String("path", p), slog.String("error", err.Error()))
	}
}

func (s *Service) publish(c sse.Change) {
	if s.events != nil {
		s.events.PublishChange(c)
	}
}

func (s *Service) buildNote(p string, data []byte) (*models.Note, error) {
	res := parser.Parse(p, data)
	backlinks := []string{}
	if s.db != nil {
		bl, err := s.db.Backlinks(p)
		if err != nil {
			return nil, err
		}
		if bl != nil {
			backlinks = bl
		}
	}
	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Note{
		Path:        p,
		Title:       res.Title,
		Content:     string(data),
		Checksum:    storage.Checksum(data),
		Tags:        tags,
		Frontmatter: res.Frontmatter,
		Backlinks:   backlinks,
		UpdatedAt:   s.now(),
	}, nil
}
