package history

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/diffpatch"
)

// ListVersions returns the versions of note, oldest first. The note itself
// need not exist.
func (e *Engine) ListVersions(note string) ([]Version, error) {
	note, err := e.notePath(note)
	if err != nil {
		return nil, err
	}
	dir := e.noteDir(note)
	files, err := e.store.Files(dir)
	if err != nil {
		return nil, fmt.Errorf("history: list versions: %w", err)
	}
	out := []Version{}
	for _, f := range files {
		if path.Dir(f) != dir {
			continue
		}
		if ts, ok := parseVersionName(path.Base(f)); ok {
			out = append(out, Version{NotePath: note, Timestamp: ts})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// GetVersion returns the content of the version of note taken at ts.
func (e *Engine) GetVersion(note string, ts time.Time) (string, error) {
	note, err := e.notePath(note)
	if err != nil {
		return "", err
	}
	data, err := e.store.Read(e.versionPath(note, ts))
	if err != nil {
		return "", fmt.Errorf("history: version %s at %s: %w", note, FormatTimestamp(ts), err)
	}
	return string(data), nil
}

// ListDiffs returns the diffs of note, oldest first.
func (e *Engine) ListDiffs(note string) ([]Diff, error) {
	note, err := e.notePath(note)
	if err != nil {
		return nil, err
	}
	dir := path.Join(e.noteDir(note), diffsDir)
	files, err := e.store.Files(dir)
	if err != nil {
		return nil, fmt.Errorf("history: list diffs: %w", err)
	}
	out := []Diff{}
	for _, f := range files {
		// YYYY/MM/DD/<name>
		if strings.Count(strings.TrimPrefix(f, dir+"/"), "/") != 3 {
			continue
		}
		if ts, typ, ok := parseDiffName(path.Base(f)); ok {
			out = append(out, Diff{NotePath: note, Timestamp: ts, Type: typ})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].before(out[j]) })
	return out, nil
}

// GetDiff returns the patch text of a diff.
func (e *Engine) GetDiff(note string, ts time.Time, typ DiffType) (string, error) {
	note, err := e.notePath(note)
	if err != nil {
		return "", err
	}
	data, err := e.store.Read(e.diffPath(note, ts, typ))
	if err != nil {
		return "", fmt.Errorf("history: %s diff %s at %s: %w", typ, note, FormatTimestamp(ts), err)
	}
	return string(data), nil
}

// Timeline groups the diffs of note under the version they were recorded
// after, newest entry first. Within an entry diffs are oldest first. A diff
// with the same timestamp as a version belongs to that version. Diffs older
// than every version form a final entry without a version.
func (e *Engine) Timeline(note string) ([]TimelineEntry, error) {
	versions, err := e.ListVersions(note)
	if err != nil {
		return nil, err
	}
	diffs, err := e.ListDiffs(note)
	if err != nil {
		return nil, err
	}

	out := []TimelineEntry{}
	end := len(diffs)
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		start := end
		for start > 0 && !diffs[start-1].Timestamp.Before(v.Timestamp) {
			start--
		}
		out = append(out, TimelineEntry{Version: &v, Diffs: append([]Diff{}, diffs[start:end]...)})
		end = start
	}
	if end > 0 {
		out = append(out, TimelineEntry{Diffs: append([]Diff{}, diffs[:end]...)})
	}
	return out, nil
}

// ContentAt rebuilds note as it was right after the given diff.
func (e *Engine) ContentAt(note string, ts time.Time, typ DiffType) (string, error) {
	timeline, err := e.Timeline(note)
	if err != nil {
		return "", err
	}
	for _, entry := range timeline {
		idx := -1
		for i, d := range entry.Diffs {
			if d.Timestamp.Equal(ts) && d.Type == typ {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		content := ""
		if entry.Version != nil {
			if content, err = e.GetVersion(note, entry.Version.Timestamp); err != nil {
				return "", err
			}
		}
		for _, d := range entry.Diffs[:idx+1] {
			patch, err := e.GetDiff(note, d.Timestamp, d.Type)
			if err != nil {
				return "", err
			}
			if content, err = diffpatch.Apply(content, patch); err != nil {
				return "", fmt.Errorf("history: replay %s diff at %s: %w", d.Type, FormatTimestamp(d.Timestamp), err)
			}
		}
		return content, nil
	}
	return "", fmt.Errorf("history: %s diff %s at %s: %w", typ, note, FormatTimestamp(ts), apperr.ErrNotFound)
}
