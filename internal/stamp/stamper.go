package stamp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/storage"
)

// WriteFunc replaces the content of a note.
type WriteFunc func(path string, content []byte) error

// Stamper stamps the notes of a store in place.
type Stamper struct {
	store  storage.Provider
	write  WriteFunc
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Stamper.
type Option func(*Stamper)

// WithClock overrides the clock that supplies today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Stamper) { s.now = now }
}

// WithWriter routes note writes through fn instead of the store.
func WithWriter(fn WriteFunc) Option {
	return func(s *Stamper) { s.write = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stamper) { s.logger = l }
}

// New creates a Stamper over store.
func New(store storage.Provider, opts ...Option) *Stamper {
	s := &Stamper{
		store:  store,
		write:  store.Write,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the date the stamper writes.
func (s *Stamper) Today() string {
	return pattern.FormatDate(s.now())
}

// Stamp stamps every note under dir. The result maps note paths to their
// changes; notes without changes are omitted. The first read or write error
// aborts the run.
func (s *Stamper) Stamp(dir string, opts Options) (map[string][]Change, error) {
	out := map[string][]Change{}
	if !opts.Any() {
		return out, nil
	}
	paths, err := s.store.Paths(dir)
	if err != nil {
		return nil, fmt.Errorf("stamp: list %s: %w", dir, err)
	}
	today := s.Today()
	for _, p := range paths {
		data, err := s.store.Read(p)
		if err != nil {
			return nil, fmt.Errorf("stamp: %w", err)
		}
		stamped, changes := StampText(string(data), opts, today)
		if len(changes) == 0 {
			continue
		}
		if err := s.write(p, []byte(stamped)); err != nil {
			return nil, fmt.Errorf("stamp: write %s: %w", p, err)
		}
		s.logger.Debug("stamp: note stamped", slog.String("path", p), slog.Int("changes", len(changes)))
		out[p] = changes
	}
	return out, nil
}
