package history

import (
	"path"
	"strings"
	"time"
)

const (
	versionExt = ".version"
	diffExt    = ".diff"
	diffsDir   = "diffs"
)

// noteDir is the history directory of a note.
func (e *Engine) noteDir(note string) string {
	return path.Join("/", e.dir, note)
}

func (e *Engine) versionPath(note string, ts time.Time) string {
	return path.Join(e.noteDir(note), FormatTimestamp(ts)+versionExt)
}

func (e *Engine) diffPath(note string, ts time.Time, typ DiffType) string {
	day := ts.UTC().Format("2006/01/02")
	return path.Join(e.noteDir(note), diffsDir, day, FormatTimestamp(ts)+"."+string(typ)+diffExt)
}

// parseVersionName returns the timestamp of a version file name.
func parseVersionName(name string) (time.Time, bool) {
	ts, ok := strings.CutSuffix(name, versionExt)
	if !ok {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(ts)
	return t, err == nil
}

// parseDiffName splits "<timestamp>.<type>.diff".
func parseDiffName(name string) (time.Time, DiffType, bool) {
	rest, ok := strings.CutSuffix(name, diffExt)
	if !ok {
		return time.Time{}, "", false
	}
	i := strings.LastIndex(rest, ".")
	if i < 0 {
		return time.Time{}, "", false
	}
	typ, err := ParseDiffType(rest[i+1:])
	if err != nil {
		return time.Time{}, "", false
	}
	t, err := ParseTimestamp(rest[:i])
	if err != nil {
		return time.Time{}, "", false
	}
	return t, typ, true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
