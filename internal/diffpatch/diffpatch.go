// Package diffpatch produces unified diffs between note contents and applies
// them forwards or backwards in-process.
//
// Content is split on "\n" and every line is diffed with a newline appended,
// so a trailing newline becomes a final empty line and Apply reproduces the
// content byte for byte.
package diffpatch

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"github.com/starford/quire/internal/apperr"
)

// DevNull names the missing side of a create or delete patch.
const DevNull = "/dev/null"

// NoChange is the patch written when a merged edit cancels out.
const NoChange = "no changes made\n"

// ContextLines is the number of unchanged lines around each hunk.
const ContextLines = 3

func split(content string) []string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] += "\n"
	}
	return lines
}

// Unified returns the unified diff turning a into b. Identical inputs give a
// patch with headers only.
func Unified(a, b, from, to string) (string, error) {
	d := difflib.UnifiedDiff{
		A:        split(a),
		B:        split(b),
		FromFile: from,
		ToFile:   to,
		Context:  ContextLines,
	}
	out, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "", fmt.Errorf("diffpatch: %v: %w", err, apperr.ErrOperation)
	}
	if out == "" {
		return "--- " + from + "\n+++ " + to + "\n", nil
	}
	return out, nil
}

// RenamePatch is the pseudo-diff recorded for a move.
func RenamePatch(from, to string) string {
	return "rename from " + from + "\nrename to " + to + "\n"
}

// ParseRename extracts the paths of a rename pseudo-diff.
func ParseRename(patch string) (from, to string, ok bool) {
	lines := strings.Split(strings.TrimSuffix(patch, "\n"), "\n")
	if len(lines) != 2 {
		return "", "", false
	}
	from, ok1 := strings.CutPrefix(lines[0], "rename from ")
	to, ok2 := strings.CutPrefix(lines[1], "rename to ")
	return from, to, ok1 && ok2
}

// IsIdentity reports whether applying patch leaves content unchanged.
func IsIdentity(patch string) bool {
	if patch == NoChange {
		return true
	}
	if _, _, ok := ParseRename(patch); ok {
		return true
	}
	return !strings.Contains(patch, "\n@@ ")
}

// Apply applies patch to content.
func Apply(content, patch string) (string, error) {
	return apply(content, patch, false)
}

// Reverse undoes patch on content, the result of applying it.
func Reverse(content, patch string) (string, error) {
	return apply(content, patch, true)
}

// hunk is a parsed hunk header with its body lines taken verbatim from the
// patch text, op character included and newline stripped.
type hunk struct {
	*diff.Hunk
	body []string
}

// parseHunks splits patch into hunks. Only the "@@" headers go through
// go-diff; each body is read by the header's line counts so lines such as
// "-- sig" or a trailing "\r" reach Apply unchanged.
func parseHunks(patch string) ([]hunk, error) {
	lines := strings.Split(strings.TrimSuffix(patch, "\n"), "\n")
	var out []hunk
	for i := 0; i < len(lines); {
		line := lines[i]
		i++
		if !strings.HasPrefix(line, "@@ ") {
			if len(out) == 0 || strings.HasPrefix(line, "\\") {
				continue
			}
			return nil, fmt.Errorf("diffpatch: parse: line %d: unexpected %q: %w", i, line, apperr.ErrOperation)
		}
		hs, err := diff.ParseHunks([]byte(line + "\n"))
		if err != nil || len(hs) != 1 {
			return nil, fmt.Errorf("diffpatch: parse: line %d: bad hunk header %q: %w", i, line, apperr.ErrOperation)
		}
		h := hunk{Hunk: hs[0]}
		orig, next := int(h.OrigLines), int(h.NewLines)
		for orig > 0 || next > 0 {
			if i >= len(lines) {
				return nil, fmt.Errorf("diffpatch: parse: hunk %q truncated: %w", line, apperr.ErrOperation)
			}
			bl := lines[i]
			i++
			if bl == "" {
				bl = " "
			}
			switch bl[0] {
			case ' ':
				orig--
				next--
			case '-':
				orig--
			case '+':
				next--
			case '\\':
				continue
			default:
				return nil, fmt.Errorf("diffpatch: parse: line %d: malformed hunk line %q: %w", i, bl, apperr.ErrOperation)
			}
			if orig < 0 || next < 0 {
				return nil, fmt.Errorf("diffpatch: parse: hunk %q longer than its header: %w", line, apperr.ErrOperation)
			}
			h.body = append(h.body, bl)
		}
		out = append(out, h)
	}
	return out, nil
}

func apply(content, patch string, reverse bool) (string, error) {
	if IsIdentity(patch) {
		return content, nil
	}
	hunks, err := parseHunks(patch)
	if err != nil {
		return "", err
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	idx := 0
	for _, h := range hunks {
		start, count := int(h.OrigStartLine), int(h.OrigLines)
		if reverse {
			start, count = int(h.NewStartLine), int(h.NewLines)
		}
		if count > 0 {
			start--
		}
		if start < idx || start > len(lines) {
			return "", fmt.Errorf("diffpatch: hunk at line %d out of range: %w", start+1, apperr.ErrOperation)
		}
		out = append(out, lines[idx:start]...)
		idx = start

		for _, bl := range h.body {
			op, text := bl[0], bl[1:]
			if reverse {
				switch op {
				case '+':
					op = '-'
				case '-':
					op = '+'
				}
			}
			switch op {
			case ' ', '-':
				if idx >= len(lines) || lines[idx] != text {
					return "", fmt.Errorf("diffpatch: context mismatch at line %d: %w", idx+1, apperr.ErrOperation)
				}
				if op == ' ' {
					out = append(out, text)
				}
				idx++
			case '+':
				out = append(out, text)
			}
		}
	}
	out = append(out, lines[idx:]...)
	return strings.Join(out, "\n"), nil
}
