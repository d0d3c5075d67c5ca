package history

import (
	"fmt"
	"time"

	"github.com/starford/quire/internal/apperr"
)

// TimestampLayout names version and diff files: UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout string.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("history: bad timestamp %q: %w", s, apperr.ErrInvalidArgument)
	}
	return t, nil
}

// DiffType is the mutation a diff records.
type DiffType string

const (
	DiffCreate DiffType = "create"
	DiffEdit   DiffType = "edit"
	DiffMove   DiffType = "move"
	DiffDelete DiffType = "delete"
)

// ParseDiffType validates a diff type name.
func ParseDiffType(s string) (DiffType, error) {
	switch DiffType(s) {
	case DiffCreate, DiffEdit, DiffMove, DiffDelete:
		return DiffType(s), nil
	}
	return "", fmt.Errorf("history: unknown diff type %q: %w", s, apperr.ErrInvalidArgument)
}

func (t DiffType) rank() int {
	switch t {
	case DiffCreate:
		return 0
	case DiffEdit:
		return 1
	case DiffMove:
		return 2
	default:
		return 3
	}
}

// Version identifies a full snapshot of a note.
type Version struct {
	NotePath  string    `json:"note_path"`
	Timestamp time.Time `json:"timestamp"`
}

// Diff identifies one recorded mutation of a note.
type Diff struct {
	NotePath  string    `json:"note_path"`
	Timestamp time.Time `json:"timestamp"`
	Type      DiffType  `json:"type"`
}

func (d Diff) before(o Diff) bool {
	if !d.Timestamp.Equal(o.Timestamp) {
		return d.Timestamp.Before(o.Timestamp)
	}
	return d.Type.rank() < o.Type.rank()
}

// TimelineEntry is a version and the diffs recorded after it, up to the next
// newer version. The oldest entry may have no version.
type TimelineEntry struct {
	Version *Version `json:"version"`
	Diffs   []Diff   `json:"diffs"`
}
