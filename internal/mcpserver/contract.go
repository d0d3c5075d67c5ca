package mcpserver

// NoteFormatContract describes the line markup quire understands, for LLM
// consumers that create or edit notes.
const NoteFormatContract = `# Quire Note Format

Notes are UTF-8 Markdown files ending in ` + "`.md`" + `. Paths use forward slashes and
are rooted at the notes directory (` + "`/projects/plan.md`" + `). Directories and files
whose name starts with a dot are invisible to quire.

## Frontmatter

An optional YAML block fenced by ` + "`---`" + ` lines at the very top. A ` + "`title`" + ` key
overrides the title taken from the first heading; a ` + "`tags`" + ` list adds tags.

## Elements

Each element occupies one line. Leave dates out when writing: the stamp tool
fills them in.

- To-do: ` + "`- [ ] text`" + `. Brackets hold a space (open), ` + "`X`" + ` (complete) or ` + "`S`" + ` (skipped).
  Stamped form: ` + "`- [ ] (2024-03-10) text`" + ` and, once finished,
  ` + "`- [X] (2024-03-10 -> 2024-03-12) text`" + `.
- Question: ` + "`? text`" + `, stamped as ` + "`? (2024-03-10) text`" + `.
- Answer: ` + "`@ text`" + ` on a later line of the same note. It answers the closest
  question above it when no other question or answer sits between them.
- Definition: ` + "`{term} meaning`" + `. Deeper-indented lines below it are its sub-elements.
- Tag: ` + "`:name:`" + ` anywhere in a line; the name needs at least one letter.
- Link: ` + "`[text](other.md)`" + ` relative to the note, or ` + "`[text](/dir/other.md)`" + `
  from the notes root. ` + "`http(s)://`" + ` targets are external.
- Location: ` + "`GPS(51.5074, -0.1278) London`" + `.
- ` + "`\\today`" + ` is replaced by the stamp date.

## Example

` + "```" + `markdown
---
title: Weekly standup
tags: [meetings]
---

# Weekly standup

- [ ] review the [design doc](design.md) :project-x:
? who owns the rollout
@ Alice
{RFC} request for comments
  see the [process](/handbook/rfc.md)
` + "```" + `
`
