package history

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/quire/internal/storage"
)

// EnsureVersionDir snapshots every note under dir that has no version today.
func (e *Engine) EnsureVersionDir(dir string) error {
	paths, err := e.store.Paths(dir)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	now := e.Now()
	for _, p := range paths {
		if err := e.EnsureVersion(p, now); err != nil {
			return err
		}
	}
	return nil
}

// MoveDir records the move of every note now under newDir from the matching
// path under oldDir. Call it after the directory was moved, and
// EnsureVersionDir(oldDir) before.
func (e *Engine) MoveDir(oldDir, newDir string) error {
	oldDir, newDir = storage.Clean(oldDir), storage.Clean(newDir)
	paths, err := e.store.Paths(newDir)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for _, p := range paths {
		rel := strings.TrimPrefix(p, newDir)
		if err := e.RecordMove(path.Join(oldDir, rel), p); err != nil {
			return err
		}
	}
	return nil
}

// DeleteDir records the deletion of every note under dir. Call it before the
// directory is removed.
func (e *Engine) DeleteDir(dir string) error {
	paths, err := e.store.Paths(dir)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for _, p := range paths {
		if err := e.RecordDelete(p); err != nil {
			return err
		}
	}
	return nil
}

// Purge removes the whole history of note.
func (e *Engine) Purge(note string) error {
	note, err := e.notePath(note)
	if err != nil {
		return err
	}
	if err := e.store.RemoveAll(e.noteDir(note)); err != nil {
		return fmt.Errorf("history: purge %s: %w", note, err)
	}
	e.logger.Info("history: purged", slog.String("path", note))
	return nil
}
