package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// tagRe matches the candidate " :word:" token; the trailing boundary is
// checked by hand so adjacent tags can share a separating space.
var tagRe = regexp.MustCompile(` :(\w+):`)

type tagSpan struct {
	start, end int
	name       string
}

func tagSpans(text string) []tagSpan {
	var out []tagSpan
	for _, m := range tagRe.FindAllStringSubmatchIndex(text, -1) {
		end := m[1]
		if end < len(text) && text[end] != ' ' && text[end] != '\t' {
			continue
		}
		name := text[m[2]:m[3]]
		if !hasLetter(name) {
			continue
		}
		out = append(out, tagSpan{start: m[0], end: end, name: name})
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// ExtractTags returns the sorted unique tags in text and the text with every
// tag token removed.
func ExtractTags(text string) ([]string, string) {
	spans := tagSpans(text)
	if len(spans) == 0 {
		return nil, text
	}
	seen := make(map[string]struct{}, len(spans))
	var tags []string
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s.start])
		prev = s.end
		if _, ok := seen[s.name]; ok {
			continue
		}
		seen[s.name] = struct{}{}
		tags = append(tags, s.name)
	}
	b.WriteString(text[prev:])
	sort.Strings(tags)
	return tags, strings.TrimRight(b.String(), " \t")
}

// AppendTags writes tags back onto text in their wrapped form.
func AppendTags(text string, tags []string) string {
	var b strings.Builder
	b.WriteString(text)
	for _, t := range tags {
		b.WriteString(" :")
		b.WriteString(t)
		b.WriteString(":")
	}
	return b.String()
}

// HasTag reports whether text carries the given tag.
func HasTag(text, tag string) bool {
	for _, s := range tagSpans(text) {
		if s.name == tag {
			return true
		}
	}
	return false
}
