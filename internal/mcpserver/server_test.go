package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/index"
	"github.com/starford/quire/internal/noteservice"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/testutil"
)

func testServer(t *testing.T) (*Server, *storage.FS, *testutil.Clock) {
	t.Helper()

	_, store := testutil.TestNotes(t)
	db, err := index.Open(filepath.Join(t.TempDir(), "mcp.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	clock := testutil.NewClock(2024, time.March, 10, 9, 0)
	hist := history.New(store, history.WithClock(clock.Now))
	svc := noteservice.New(store, hist, noteservice.WithIndex(db), noteservice.WithClock(clock.Now))
	return New(svc, "test"), store, clock
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so handlers are invoked
	// directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_notes":     srv.searchNotes,
		"read_note":        srv.readNote,
		"create_note":      srv.createNote,
		"update_note":      srv.updateNote,
		"list_notes":       srv.listNotes,
		"get_backlinks":    srv.getBacklinks,
		"list_todos":       srv.listTodos,
		"mark_todo":        srv.markTodo,
		"list_questions":   srv.listQuestions,
		"list_definitions": srv.listDefinitions,
		"list_tags":        srv.listTags,
		"list_links":       srv.listLinks,
		"list_locations":   srv.listLocations,
		"stamp_notes":      srv.stampNotes,
		"note_history":     srv.noteHistory,
		"get_diff":         srv.getDiff,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadNote(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{
		"path":    "test.md",
		"content": "# Test\nHello",
	})
	if text := resultText(r); text != "created: /test.md" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]any{"path": "/test.md"})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}

	r = callTool(t, srv, "create_note", map[string]any{"path": "test.md", "content": "again"})
	if !r.IsError {
		t.Error("expected error for duplicate create")
	}
}

func TestUpdateNoteRecordsHistory(t *testing.T) {
	srv, _, clock := testServer(t)
	callTool(t, srv, "create_note", map[string]any{"path": "h.md", "content": "one\n"})
	clock.Advance(time.Minute)

	r := callTool(t, srv, "update_note", map[string]any{"path": "h.md", "content": "two\n"})
	if r.IsError {
		t.Fatalf("update: %s", resultText(r))
	}

	r = callTool(t, srv, "note_history", map[string]any{"path": "h.md"})
	var timeline []history.TimelineEntry
	if err := json.Unmarshal([]byte(resultText(r)), &timeline); err != nil {
		t.Fatalf("decode timeline: %v", err)
	}
	if len(timeline) != 2 || timeline[0].Version == nil {
		t.Fatalf("timeline = %+v", timeline)
	}
	edit := timeline[0].Diffs[0]

	r = callTool(t, srv, "get_diff", map[string]any{
		"path": "h.md",
		"ts":   history.FormatTimestamp(edit.Timestamp),
		"type": string(edit.Type),
	})
	if text := resultText(r); !strings.Contains(text, "-one") || !strings.Contains(text, "+two") {
		t.Errorf("diff = %q", text)
	}

	r = callTool(t, srv, "get_diff", map[string]any{"path": "h.md", "ts": "nope", "type": "edit"})
	if !r.IsError {
		t.Error("expected error for bad timestamp")
	}
}

func TestListNotes(t *testing.T) {
	srv, _, _ := testServer(t)
	callTool(t, srv, "create_note", map[string]any{"path": "a.md", "content": "a :x:"})
	callTool(t, srv, "create_note", map[string]any{"path": "b.md", "content": "b"})

	if text := resultText(callTool(t, srv, "list_notes", map[string]any{})); text != "/a.md\n/b.md" {
		t.Errorf("list = %q", text)
	}
	if text := resultText(callTool(t, srv, "list_notes", map[string]any{"tag": "x"})); text != "/a.md" {
		t.Errorf("tag list = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "read_note", map[string]any{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _, _ := testServer(t)
	callTool(t, srv, "create_note", map[string]any{"path": "a.md", "content": "links to [b](b.md)"})

	r := callTool(t, srv, "get_backlinks", map[string]any{"path": "b.md"})
	if text := resultText(r); text != "/a.md" {
		t.Errorf("backlinks = %q, want /a.md", text)
	}
	r = callTool(t, srv, "get_backlinks", map[string]any{"path": "a.md"})
	if text := resultText(r); text != "no backlinks found" {
		t.Errorf("backlinks = %q", text)
	}
}

func TestTodoTools(t *testing.T) {
	srv, store, _ := testServer(t)
	testutil.WriteNotes(t, store, map[string]string{
		"/t.md": "- [ ] (2024-03-01) now\n- [ ] (2024-06-01) later\n",
	})

	var todos []elements.Todo
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_todos", map[string]any{}))), &todos)
	if len(todos) != 1 || todos[0].Text != "now" {
		t.Errorf("default todos = %+v", todos)
	}
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_todos", map[string]any{"suppress_future": false}))), &todos)
	if len(todos) != 2 {
		t.Errorf("unsuppressed todos = %+v", todos)
	}

	r := callTool(t, srv, "mark_todo", map[string]any{"path": "/t.md", "line": float64(1), "status": "complete"})
	if text := resultText(r); text != "- [X] (2024-03-01) now" {
		t.Errorf("mark = %q", text)
	}
	if got := testutil.ReadNote(t, store, "/t.md"); !strings.HasPrefix(got, "- [X]") {
		t.Errorf("note after mark = %q", got)
	}
	r = callTool(t, srv, "mark_todo", map[string]any{"path": "/t.md", "line": float64(1), "status": "done"})
	if !r.IsError {
		t.Error("expected error for unknown status")
	}
}

func TestElementTools(t *testing.T) {
	srv, store, _ := testServer(t)
	testutil.WriteNotes(t, store, map[string]string{
		"/e.md": "? why\n@ because\n{api} interface :dev:\nGPS(10, 20) camp\n[ext](https://example.com)\n",
	})

	var questions []elements.Question
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_questions", map[string]any{"status": "answered"}))), &questions)
	if len(questions) != 1 || questions[0].Answer != "because" {
		t.Errorf("questions = %+v", questions)
	}

	var defs []elements.Definition
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_definitions", map[string]any{}))), &defs)
	if len(defs) != 1 || defs[0].Term != "api" {
		t.Errorf("definitions = %+v", defs)
	}

	if text := resultText(callTool(t, srv, "list_tags", map[string]any{})); !strings.Contains(text, `"dev"`) {
		t.Errorf("tags = %q", text)
	}

	var locs []elements.Location
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_locations", map[string]any{}))), &locs)
	if len(locs) != 1 || locs[0].Latitude != 10 || locs[0].Name != "camp" {
		t.Errorf("locations = %+v", locs)
	}

	var links []elements.Link
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_links", map[string]any{"include_external": true}))), &links)
	if len(links) != 1 || links[0].Internal {
		t.Errorf("links = %+v", links)
	}
}

func TestStampNotes(t *testing.T) {
	srv, store, _ := testServer(t)
	testutil.WriteNotes(t, store, map[string]string{"/s.md": "- [ ] task\n"})

	r := callTool(t, srv, "stamp_notes", map[string]any{})
	if r.IsError {
		t.Fatalf("stamp: %s", resultText(r))
	}
	if got := testutil.ReadNote(t, store, "/s.md"); got != "- [ ] (2024-03-10) task\n" {
		t.Errorf("stamped = %q", got)
	}
}
