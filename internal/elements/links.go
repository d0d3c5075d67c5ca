package elements

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/storage"
)

// LinkQuery filters a link scan. Source, Target and Note are note paths;
// Note selects links in either direction and cannot be combined with the
// other two.
type LinkQuery struct {
	Source          string
	Target          string
	Note            string
	IncludeExternal bool
	IncludeInvalid  bool
}

// ResolveLink turns a link target written in source into a note path.
// Targets starting with "/" are relative to the notes root, anything else to
// the directory of source. Fragments and query strings are dropped; a bare
// fragment resolves to source itself.
func ResolveLink(source, target string) string {
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return storage.Clean(source)
	}
	if u, err := url.PathUnescape(target); err == nil {
		target = u
	}
	if strings.HasPrefix(target, "/") {
		return storage.Clean(target)
	}
	return storage.Clean(path.Join(path.Dir(storage.Clean(source)), target))
}

// Links lists links matching q.
func (e *Extractor) Links(q LinkQuery) ([]Link, error) {
	if q.Note != "" {
		if q.Source != "" || q.Target != "" {
			return nil, fmt.Errorf("elements: note cannot be combined with source or target: %w", apperr.ErrInvalidArgument)
		}
		from, err := e.links(q.Note, "", q)
		if err != nil {
			return nil, err
		}
		to, err := e.links("", q.Note, q)
		if err != nil {
			return nil, err
		}
		return dedupLinks(append(from, to...)), nil
	}
	out, err := e.links(q.Source, q.Target, q)
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (e *Extractor) links(source, target string, q LinkQuery) ([]Link, error) {
	var keep func(string) bool
	if target != "" {
		target = storage.Clean(target)
		base := path.Base(target)
		keep = func(line string) bool {
			if !strings.Contains(line, "](") {
				return false
			}
			if strings.Contains(line, base) {
				return true
			}
			u, err := url.PathUnescape(line)
			return err == nil && strings.Contains(u, base)
		}
	} else {
		keep = func(line string) bool { return strings.Contains(line, "](") }
	}

	var out []Link
	fn := func(p string, number int, line string) {
		for _, raw := range pattern.ParseLinks(line) {
			l := Link{FilePath: p, LineNumber: number, Source: p, Text: raw.Text}
			if raw.External {
				l.Target, l.Valid = raw.Target, true
			} else {
				l.Target = ResolveLink(p, raw.Target)
				l.Internal = true
				l.Valid = e.store.Exists(l.Target)
			}
			if target != "" && (!l.Internal || l.Target != target) {
				continue
			}
			if !l.Internal && !q.IncludeExternal {
				continue
			}
			if !l.Valid && !q.IncludeInvalid {
				continue
			}
			out = append(out, l)
		}
	}

	if source != "" {
		source = storage.Clean(source)
		if !e.store.Exists(source) {
			return nil, fmt.Errorf("elements: links of %s: %w", source, apperr.ErrNotFound)
		}
		if err := e.scanFile(source, keep, fn); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := e.scan("", keep, fn); err != nil {
		return nil, err
	}
	return out, nil
}

func dedupLinks(in []Link) []Link {
	type key struct {
		path   string
		line   int
		target string
		text   string
	}
	seen := make(map[key]struct{}, len(in))
	out := make([]Link, 0, len(in))
	for _, l := range in {
		k := key{l.FilePath, l.LineNumber, l.Target, l.Text}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
