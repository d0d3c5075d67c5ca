package elements

import (
	"fmt"
	"sort"
	"strings"

	"github.com/starford/quire/internal/pattern"
)

// Definitions lists the "{term} definition" lines under dir. With
// includeSub, each record also carries the following non-blank lines that
// are indented deeper than the definition.
func (e *Extractor) Definitions(dir string, includeSub bool) ([]Definition, error) {
	paths, err := e.store.Paths(dir)
	if err != nil {
		return nil, fmt.Errorf("elements: list %s: %w", dir, err)
	}
	var out []Definition
	for _, p := range paths {
		data, err := e.store.Read(p)
		if err != nil {
			return nil, fmt.Errorf("elements: %w", err)
		}
		lines := SplitLines(string(data))
		for i := range lines {
			line := strings.TrimSuffix(lines[i], "\r")
			d, ok := pattern.ParseDefinition(line)
			if !ok {
				continue
			}
			rec := Definition{FilePath: p, LineNumber: i + 1, Term: d.Term, Definition: d.Definition}
			if includeSub {
				rec.SubElements = subElements(lines[i+1:], pattern.Indentation(line))
			}
			out = append(out, rec)
		}
	}
	return nonNil(out), nil
}

func subElements(lines []string, indent int) []string {
	var sub []string
	for _, l := range lines {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" || pattern.Indentation(l) <= indent {
			break
		}
		sub = append(sub, strings.TrimSpace(l))
	}
	return sub
}

// Tags returns the sorted unique tags used under dir.
func (e *Extractor) Tags(dir string) ([]string, error) {
	seen := map[string]struct{}{}
	err := e.scan(dir, func(line string) bool { return strings.Contains(line, ":") }, func(_ string, _ int, line string) {
		tags, _ := pattern.ExtractTags(line)
		for _, t := range tags {
			seen[t] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// Locations lists the GPS annotations under dir.
func (e *Extractor) Locations(dir string) ([]Location, error) {
	var out []Location
	err := e.scan(dir, nil, func(path string, number int, line string) {
		g, ok := pattern.ParseGPS(line)
		if !ok {
			return
		}
		out = append(out, Location{
			FilePath:   path,
			LineNumber: number,
			Latitude:   g.Latitude,
			Longitude:  g.Longitude,
			Name:       g.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}
