// Package history keeps a per-note edit history on disk: at most one full
// snapshot ("version") per note per UTC day, plus one patch ("diff") per
// mutation. Any past state of a note can be rebuilt from a version and the
// diffs recorded after it.
//
// Layout below the notes root:
//
//	<dir>/<note path>/<timestamp>.version
//	<dir>/<note path>/diffs/<YYYY>/<MM>/<DD>/<timestamp>.<type>.diff
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/diffpatch"
	"github.com/starford/quire/internal/metrics"
	"github.com/starford/quire/internal/storage"
)

// DefaultDir is the history directory relative to the notes root. Being
// hidden, it is never scanned as notes.
const DefaultDir = ".history"

// DefaultMergeWindow is how long an edit diff keeps absorbing later edits.
const DefaultMergeWindow = 15 * time.Minute

// Store is the file access the engine needs. *storage.FS implements it.
type Store interface {
	IsNotePath(path string) bool
	Paths(dir string) ([]string, error)
	Files(dir string) ([]string, error)
	Read(path string) ([]byte, error)
	Create(path string, content []byte) error
	Exists(path string) bool
	Delete(path string) error
	RemoveAll(dir string) error
}

var _ Store = (*storage.FS)(nil)

// Engine records and reads note history.
type Engine struct {
	store  Store
	dir    string
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDir sets the history directory, relative to the notes root.
func WithDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.dir = dir
		}
	}
}

// WithMergeWindow sets the edit merge window.
func WithMergeWindow(d time.Duration) Option {
	return func(e *Engine) { e.window = d }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over store.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		dir:    DefaultDir,
		window: DefaultMergeWindow,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dir returns the history directory relative to the notes root.
func (e *Engine) Dir() string { return e.dir }

// Now returns the engine clock truncated to the millisecond.
func (e *Engine) Now() time.Time {
	return e.now().UTC().Truncate(time.Millisecond)
}

func (e *Engine) notePath(note string) (string, error) {
	note = storage.Clean(note)
	if !e.store.IsNotePath(note) {
		return "", fmt.Errorf("history: not a note path: %s: %w", note, apperr.ErrInvalidArgument)
	}
	return note, nil
}

func (e *Engine) read(note string) (string, error) {
	data, err := e.store.Read(note)
	if err != nil {
		return "", fmt.Errorf("history: %w", err)
	}
	return string(data), nil
}

// EnsureVersion snapshots note unless it already has a version on now's
// UTC day.
func (e *Engine) EnsureVersion(note string, now time.Time) error {
	note, err := e.notePath(note)
	if err != nil {
		return err
	}
	versions, err := e.ListVersions(note)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if sameDay(v.Timestamp, now) {
			return nil
		}
	}
	return e.snapshot(note, now)
}

func (e *Engine) snapshot(note string, ts time.Time) error {
	content, err := e.read(note)
	if err != nil {
		return err
	}
	if err := e.store.Create(e.versionPath(note, ts), []byte(content)); err != nil {
		return fmt.Errorf("history: version %s: %w", note, err)
	}
	metrics.VersionsRecorded.Inc()
	e.logger.Debug("history: version taken", slog.String("path", note), slog.String("ts", FormatTimestamp(ts)))
	return nil
}

func (e *Engine) writeDiff(note string, ts time.Time, typ DiffType, patch string) error {
	if err := e.store.Create(e.diffPath(note, ts, typ), []byte(patch)); err != nil {
		return fmt.Errorf("history: %s diff %s: %w", typ, note, err)
	}
	metrics.DiffsRecorded.WithLabelValues(string(typ)).Inc()
	e.logger.Debug("history: diff recorded",
		slog.String("path", note),
		slog.String("type", string(typ)),
		slog.String("ts", FormatTimestamp(ts)),
	)
	return nil
}

// RecordCreate records the initial content of a new note.
func (e *Engine) RecordCreate(note string) error {
	note, err := e.notePath(note)
	if err != nil {
		return err
	}
	content, err := e.read(note)
	if err != nil {
		return err
	}
	patch, err := diffpatch.Unified("", content, diffpatch.DevNull, "b"+note)
	if err != nil {
		return err
	}
	return e.writeDiff(note, e.Now(), DiffCreate, patch)
}

// RecordEdit records the change from the note's current content to
// newContent. It must be called before newContent is written.
//
// An edit diff younger than the merge window, with no version taken after
// it, is replaced by a single diff covering both edits. A no-op edit writes
// nothing unless it cancels such a diff, in which case the NoChange marker
// takes its place.
func (e *Engine) RecordEdit(note, newContent string) error {
	note, err := e.notePath(note)
	if err != nil {
		return err
	}
	current, err := e.read(note)
	if err != nil {
		return err
	}
	now := e.Now()
	if err := e.EnsureVersion(note, now); err != nil {
		return err
	}

	base := current
	merged := false
	if latest, ok, err := e.mergeCandidate(note, now); err != nil {
		return err
	} else if ok {
		patch, err := e.GetDiff(note, latest.Timestamp, latest.Type)
		if err != nil {
			return err
		}
		prev, err := diffpatch.Reverse(current, patch)
		switch {
		case errors.Is(err, apperr.ErrOperation):
			e.logger.Warn("history: cannot merge, note changed outside quire",
				slog.String("path", note), slog.String("error", err.Error()))
		case err != nil:
			return err
		default:
			if err := e.store.Delete(e.diffPath(note, latest.Timestamp, latest.Type)); err != nil {
				return fmt.Errorf("history: drop merged diff: %w", err)
			}
			base, merged = prev, true
		}
	}

	if base == newContent {
		if merged {
			return e.writeDiff(note, now, DiffEdit, diffpatch.NoChange)
		}
		return nil
	}
	patch, err := diffpatch.Unified(base, newContent, "a"+note, "b"+note)
	if err != nil {
		return err
	}
	return e.writeDiff(note, now, DiffEdit, patch)
}

// mergeCandidate returns the latest diff of note when a new edit at now
// should merge into it.
func (e *Engine) mergeCandidate(note string, now time.Time) (Diff, bool, error) {
	diffs, err := e.ListDiffs(note)
	if err != nil || len(diffs) == 0 {
		return Diff{}, false, err
	}
	latest := diffs[len(diffs)-1]
	if latest.Type != DiffEdit || !latest.Timestamp.After(now.Add(-e.window)) {
		return Diff{}, false, nil
	}
	versions, err := e.ListVersions(note)
	if err != nil {
		return Diff{}, false, err
	}
	for _, v := range versions {
		if v.Timestamp.After(latest.Timestamp) {
			return Diff{}, false, nil
		}
	}
	return latest, true, nil
}

// RecordMove records a move that has already happened on disk: newNote must
// exist and oldNote must not. The caller snapshots oldNote before moving it.
//
// The rename diff is written under both paths. The destination gets a
// version at now, or one millisecond later if it already has one today, so
// that the version sorts after the move diff.
func (e *Engine) RecordMove(oldNote, newNote string) error {
	oldNote, err := e.notePath(oldNote)
	if err != nil {
		return err
	}
	newNote, err = e.notePath(newNote)
	if err != nil {
		return err
	}
	if !e.store.Exists(newNote) {
		return fmt.Errorf("history: move destination %s: %w", newNote, apperr.ErrNotFound)
	}
	if e.store.Exists(oldNote) {
		return fmt.Errorf("history: move source %s still present: %w", oldNote, apperr.ErrAlreadyExists)
	}

	now := e.Now()
	patch := diffpatch.RenamePatch(oldNote, newNote)
	if err := e.writeDiff(oldNote, now, DiffMove, patch); err != nil {
		return err
	}
	if err := e.writeDiff(newNote, now, DiffMove, patch); err != nil {
		return err
	}

	versions, err := e.ListVersions(newNote)
	if err != nil {
		return err
	}
	ts := now
	for _, v := range versions {
		if sameDay(v.Timestamp, now) {
			ts = now.Add(time.Millisecond)
			break
		}
	}
	return e.snapshot(newNote, ts)
}

// RecordDelete snapshots note and records its removal. It must be called
// while the note still exists.
func (e *Engine) RecordDelete(note string) error {
	note, err := e.notePath(note)
	if err != nil {
		return err
	}
	content, err := e.read(note)
	if err != nil {
		return err
	}
	now := e.Now()
	if err := e.EnsureVersion(note, now); err != nil {
		return err
	}
	patch, err := diffpatch.Unified(content, "", "a"+note, diffpatch.DevNull)
	if err != nil {
		return err
	}
	return e.writeDiff(note, now, DiffDelete, patch)
}
