package noteservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/sse"
	"github.com/starford/quire/internal/stamp"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/toc"
)

var errNoIndex = fmt.Errorf("noteservice: search index not configured: %w", apperr.ErrOperation)

// ListNotes returns one page of indexed notes.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]models.NoteSummary, int, error) {
	if s.db == nil {
		return nil, 0, errNoIndex
	}
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]models.NoteSummary, len(rows))
	for i, r := range rows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		items[i] = models.NoteSummary{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      tags,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search runs a full-text query against the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.db == nil {
		return nil, errNoIndex
	}
	res, err := s.db.Search(query, limit)
	if res == nil && err == nil {
		res = []index.SearchResult{}
	}
	return res, err
}

// Graph returns the note link graph.
func (s *Service) Graph(_ context.Context) ([]index.GraphNode, []index.GraphLink, error) {
	if s.db == nil {
		return nil, nil, errNoIndex
	}
	return s.db.Graph()
}

// Backlinks returns the notes linking to target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	if s.db == nil {
		return nil, errNoIndex
	}
	bl, err := s.db.Backlinks(storage.Clean(target))
	if bl == nil && err == nil {
		bl = []string{}
	}
	return bl, err
}

// Todos lists to-dos. When suppressFuture is nil the service default applies.
func (s *Service) Todos(_ context.Context, q elements.TodoQuery, suppressFuture *bool) ([]elements.Todo, error) {
	defer metrics.ObserveScan("todos", time.Now())
	q.SuppressFuture = s.SuppressFuture()
	if suppressFuture != nil {
		q.SuppressFuture = *suppressFuture
	}
	return s.ext.Todos(q)
}

// Questions lists questions with their answers.
func (s *Service) Questions(_ context.Context, status, dir string) ([]elements.Question, error) {
	defer metrics.ObserveScan("questions", time.Now())
	return s.ext.Questions(status, dir)
}

// Definitions lists definitions.
func (s *Service) Definitions(_ context.Context, dir string, includeSub bool) ([]elements.Definition, error) {
	defer metrics.ObserveScan("definitions", time.Now())
	return s.ext.Definitions(dir, includeSub)
}

// Tags lists every tag in use.
func (s *Service) Tags(_ context.Context, dir string) ([]string, error) {
	defer metrics.ObserveScan("tags", time.Now())
	return s.ext.Tags(dir)
}

// Links lists links between notes.
func (s *Service) Links(_ context.Context, q elements.LinkQuery) ([]elements.Link, error) {
	defer metrics.ObserveScan("links", time.Now())
	return s.ext.Links(q)
}

// Locations lists GPS locations.
func (s *Service) Locations(_ context.Context, dir string) ([]elements.Location, error) {
	defer metrics.ObserveScan("locations", time.Now())
	return s.ext.Locations(dir)
}

// MarkTodo sets the status of the to-do at p:line and returns the updated line.
func (s *Service) MarkTodo(_ context.Context, p string, line int, status pattern.TodoStatus) (string, error) {
	p, err := s.mutablePath(p)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Read(p)
	if err != nil {
		return "", err
	}
	content, updated, err := elements.MarkTodoLine(string(data), line, status)
	if err != nil {
		return "", err
	}
	if content != string(data) {
		if err := s.writeTracked(p, []byte(content)); err != nil {
			return "", err
		}
	}
	return updated, nil
}

// Stamp stamps every note under dir. Rewritten notes go through the edit
// history like any other edit.
func (s *Service) Stamp(_ context.Context, dir string, opts stamp.Options) (map[string][]stamp.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer metrics.ObserveScan("stamp", time.Now())
	result, err := s.stamper.Stamp(dir, opts)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}
	counts := make(map[string]int, len(result))
	for p, changes := range result {
		counts[p] = len(changes)
		for _, c := range changes {
			metrics.StampChanges.WithLabelValues(string(c.Type)).Inc()
		}
	}
	if s.events != nil {
		s.events.Publish(sse.Event{Type: sse.TypeStamped, Data: counts})
	}
	return result, nil
}

// StampText stamps raw text with today's date without touching any note.
func (s *Service) StampText(raw string, opts stamp.Options) (string, []stamp.Change) {
	out, changes := stamp.StampText(raw, opts, s.stamper.Today())
	if changes == nil {
		changes = []stamp.Change{}
	}
	return out, changes
}

// Tree returns the table of contents under dir. Concurrent calls for the
// same dir share one walk.
func (s *Service) Tree(_ context.Context, dir string) (*toc.Node, error) {
	v, err, _ := s.flight.Do("tree:"+dir, func() (any, error) {
		defer metrics.ObserveScan("toc", time.Now())
		return s.toc.Tree(dir)
	})
	if err != nil {
		return nil, err
	}
	return v.(*toc.Node), nil
}

// Calendar returns the dated events under dir. Concurrent calls for the same
// dir share one scan.
func (s *Service) Calendar(_ context.Context, dir string) (toc.Calendar, error) {
	v, err, _ := s.flight.Do("calendar:"+dir, func() (any, error) {
		defer metrics.ObserveScan("calendar", time.Now())
		return s.toc.Calendar(dir)
	})
	if err != nil {
		return nil, err
	}
	return v.(toc.Calendar), nil
}
