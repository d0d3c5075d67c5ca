// Package elements scans notes for inline markup elements: todos,
// questions and answers, definitions, tags, links and GPS coordinates.
//
// Every call walks the notes tree once; nothing is cached between calls.
package elements

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/storage"
)

// Extractor runs element scans against a notes store.
type Extractor struct {
	store storage.Provider
	now   func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// New creates an Extractor over store.
func New(store storage.Provider, opts ...Option) *Extractor {
	e := &Extractor{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extractor) today() string {
	return pattern.FormatDate(e.now())
}

// SplitLines splits note content into lines. A trailing newline yields a
// final empty line so that JoinLines restores the content exactly.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// lineFunc receives one line of a note. number is 1-based and the text has
// any trailing carriage return removed.
type lineFunc func(path string, number int, text string)

// scan walks the notes under dir and calls fn for every line accepted by keep.
func (e *Extractor) scan(dir string, keep func(string) bool, fn lineFunc) error {
	paths, err := e.store.Paths(dir)
	if err != nil {
		return fmt.Errorf("elements: list %s: %w", dir, err)
	}
	for _, p := range paths {
		if err := e.scanFile(p, keep, fn); err != nil {
			return err
		}
	}
	return nil
}

func (e *Extractor) scanFile(path string, keep func(string) bool, fn lineFunc) error {
	data, err := e.store.Read(path)
	if err != nil {
		return fmt.Errorf("elements: %w", err)
	}
	for i, line := range SplitLines(string(data)) {
		line = strings.TrimSuffix(line, "\r")
		if keep == nil || keep(line) {
			fn(path, i+1, line)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
