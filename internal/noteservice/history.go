package noteservice

import (
	"context"
	"time"

	"github.com/starford/quire/internal/history"
)

// Versions lists the daily versions of note, oldest first.
func (s *Service) Versions(_ context.Context, note string) ([]history.Version, error) {
	return s.hist.ListVersions(note)
}

// Version returns the content of the version of note taken at ts.
func (s *Service) Version(_ context.Context, note string, ts time.Time) (string, error) {
	return s.hist.GetVersion(note, ts)
}

// Diffs lists the diffs of note in timeline order.
func (s *Service) Diffs(_ context.Context, note string) ([]history.Diff, error) {
	return s.hist.ListDiffs(note)
}

// Diff returns one patch of note.
func (s *Service) Diff(_ context.Context, note string, ts time.Time, typ history.DiffType) (string, error) {
	return s.hist.GetDiff(note, ts, typ)
}

// Timeline groups the history of note by version, newest first.
func (s *Service) Timeline(_ context.Context, note string) ([]history.TimelineEntry, error) {
	return s.hist.Timeline(note)
}

// ContentAt rebuilds note as it was right after the given diff.
func (s *Service) ContentAt(_ context.Context, note string, ts time.Time, typ history.DiffType) (string, error) {
	return s.hist.ContentAt(note, ts, typ)
}

// PurgeHistory drops the whole history of note.
func (s *Service) PurgeHistory(_ context.Context, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Purge(note)
}
