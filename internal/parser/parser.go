// Package parser reads the document-level facts of a note for indexing:
// optional YAML front matter, the title, the :tag: set and the resolved
// internal link targets.
package parser

import (
	"bytes"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/pattern"
)

// Result holds the parsed document.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
	Tags        []string
	Links       []string
}

// Parse parses the note at notePath. Link targets are resolved against
// notePath; external links are ignored.
func Parse(notePath string, data []byte) *Result {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(notePath, fm, body),
		Tags:        collectTags(fm, body),
		Links:       collectLinks(notePath, body),
	}
}

// splitFrontmatter separates a leading "---" YAML block from the body. A
// missing closing delimiter or invalid YAML leaves everything as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim+"\n")) {
		return nil, string(data)
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}
	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}

// deriveTitle prefers a front matter title, then the first "# " heading,
// then the file name without its extension.
func deriveTitle(notePath string, fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	base := path.Base(notePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func collectTags(fm map[string]any, body string) []string {
	seen := map[string]struct{}{}
	if list, ok := fm["tags"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				seen[strings.TrimSpace(s)] = struct{}{}
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		tags, _ := pattern.ExtractTags(strings.TrimSuffix(line, "\r"))
		for _, t := range tags {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func collectLinks(notePath, body string) []string {
	seen := map[string]struct{}{}
	for _, line := range strings.Split(body, "\n") {
		for _, l := range pattern.ParseLinks(line) {
			if l.External {
				continue
			}
			target := elements.ResolveLink(notePath, l.Target)
			if target == notePath {
				continue
			}
			seen[target] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
