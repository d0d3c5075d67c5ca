// Package testutil provides shared test helpers for setting up notes trees.
package testutil

import (
	"testing"
	"time"

	"github.com/starford/quire/internal/storage"
)

// TestNotes creates a temporary notes root with a storage.FS over it.
func TestNotes(t *testing.T) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteNotes writes each path/content pair into store.
func WriteNotes(t *testing.T, store storage.Provider, notes map[string]string) {
	t.Helper()
	for p, content := range notes {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatalf("Write %s: %v", p, err)
		}
	}
}

// ReadNote returns the content of p or fails the test.
func ReadNote(t *testing.T, store storage.Provider, p string) string {
	t.Helper()
	data, err := store.Read(p)
	if err != nil {
		t.Fatalf("Read %s: %v", p, err)
	}
	return string(data)
}

// Clock is a settable clock for engines that take a now function.
type Clock struct {
	T time.Time
}

// NewClock returns a clock at the given UTC time.
func NewClock(year int, month time.Month, day, hour, min int) *Clock {
	return &Clock{T: time.Date(year, month, day, hour, min, 0, 0, time.UTC)}
}

// Now returns the current clock time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
