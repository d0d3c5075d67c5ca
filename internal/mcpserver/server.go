// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes quire tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/noteservice"
)

const contractURI = "quire://note-format"

// Server wraps the MCP server with quire tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all quire tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.addNoteTools()
	s.addElementTools()
	s.addHistoryTools()

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format",
			mcp.WithResourceDescription("Line markup for to-dos, questions, definitions, tags, links and locations."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addNoteTools() {
	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through notes content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path from the notes root (e.g. /folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note. Read the format via get_note_contract or the "+
			contractURI+" resource first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path for the new note (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the content of an existing note. The edit is recorded in its history."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the quire note markup. Call this before creating or updating notes."),
	), s.getNoteContract)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List indexed notes, optionally those carrying a tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the note to find backlinks for")),
	), s.getBacklinks)
}

func (s *Server) addElementTools() {
	s.mcp.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("List to-dos across the notes tree."),
		mcp.WithString("status", mcp.Description("incomplete, complete, skipped or all"), mcp.Enum("incomplete", "complete", "skipped", "all")),
		mcp.WithString("dir", mcp.Description("Restrict to a directory")),
		mcp.WithString("query", mcp.Description("Space-separated terms every line must contain; quote phrases")),
		mcp.WithString("tag", mcp.Description("Only to-dos carrying this tag")),
		mcp.WithBoolean("suppress_future", mcp.Description("Hide to-dos starting after today")),
	), s.listTodos)

	s.mcp.AddTool(mcp.NewTool("mark_todo",
		mcp.WithDescription("Set the status of the to-do on a given line."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line number")),
		mcp.WithString("status", mcp.Required(), mcp.Enum("incomplete", "complete", "skipped")),
	), s.markTodo)

	s.mcp.AddTool(mcp.NewTool("list_questions",
		mcp.WithDescription("List questions and their answers."),
		mcp.WithString("status", mcp.Enum("answered", "unanswered", "all")),
		mcp.WithString("dir", mcp.Description("Restrict to a directory")),
	), s.listQuestions)

	s.mcp.AddTool(mcp.NewTool("list_definitions",
		mcp.WithDescription("List {term} definitions."),
		mcp.WithString("dir", mcp.Description("Restrict to a directory")),
		mcp.WithBoolean("sub_elements", mcp.Description("Include the indented lines below each definition")),
	), s.listDefinitions)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every :tag: used in the notes."),
		mcp.WithString("dir", mcp.Description("Restrict to a directory")),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("list_links",
		mcp.WithDescription("List links between notes."),
		mcp.WithString("source", mcp.Description("Links written in this note")),
		mcp.WithString("target", mcp.Description("Links pointing at this note")),
		mcp.WithBoolean("include_external", mcp.Description("Include web links")),
		mcp.WithBoolean("include_invalid", mcp.Description("Include links to missing notes")),
	), s.listLinks)

	s.mcp.AddTool(mcp.NewTool("list_locations",
		mcp.WithDescription("List GPS annotations."),
		mcp.WithString("dir", mcp.Description("Restrict to a directory")),
	), s.listLocations)

	s.mcp.AddTool(mcp.NewTool("stamp_notes",
		mcp.WithDescription("Date-stamp unstamped to-dos, questions, answers and \\today placeholders."),
		mcp.WithString("dir", mcp.Description("Directory to stamp (default: all notes)")),
	), s.stampNotes)
}

func (s *Server) addHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("note_history",
		mcp.WithDescription("Timeline of a note: versions, newest first, each with the diffs recorded after it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
	), s.noteHistory)

	s.mcp.AddTool(mcp.NewTool("get_diff",
		mcp.WithDescription("Unified diff of one recorded change."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Note path")),
		mcp.WithString("ts", mcp.Required(), mcp.Description("Diff timestamp, e.g. 2024-03-10T09:00:00.000Z")),
		mcp.WithString("type", mcp.Required(), mcp.Enum("create", "edit", "move", "delete")),
	), s.getDiff)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.CreateNote(ctx, path, []byte(content))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("created: " + note.Path), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.UpdateNote(ctx, path, []byte(content), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("updated: " + note.Path), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, _, err := s.svc.ListNotes(ctx, 1000, 0, req.GetString("tag", ""), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths := make([]string, 0, len(notes))
	for _, n := range notes {
		paths = append(paths, n.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}
