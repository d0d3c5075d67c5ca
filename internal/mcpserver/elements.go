package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/quire/internal/elements"
	"github.com/starford/quire/internal/history"
	"github.com/starford/quire/internal/pattern"
	"github.com/starford/quire/internal/stamp"
)

// optionalBool returns nil when key was not sent.
func optionalBool(req mcp.CallToolRequest, key string) *bool {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := req.GetBool(key, false)
	return &v
}

func (s *Server) listTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	todos, err := s.svc.Todos(ctx, elements.TodoQuery{
		Status: req.GetString("status", ""),
		Dir:    req.GetString("dir", ""),
		Query:  req.GetString("query", ""),
		Tag:    req.GetString("tag", ""),
	}, optionalBool(req, "suppress_future"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(todos)
}

func (s *Server) markTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	line, err := req.RequireInt("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := pattern.ParseTodoStatus(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	updated, err := s.svc.MarkTodo(ctx, path, line, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(updated), nil
}

func (s *Server) listQuestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	questions, err := s.svc.Questions(ctx, req.GetString("status", ""), req.GetString("dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(questions)
}

func (s *Server) listDefinitions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := s.svc.Definitions(ctx, req.GetString("dir", ""), req.GetBool("sub_elements", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(defs)
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.Tags(ctx, req.GetString("dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) listLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	links, err := s.svc.Links(ctx, elements.LinkQuery{
		Source:          req.GetString("source", ""),
		Target:          req.GetString("target", ""),
		IncludeExternal: req.GetBool("include_external", false),
		IncludeInvalid:  req.GetBool("include_invalid", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(links)
}

func (s *Server) listLocations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locs, err := s.svc.Locations(ctx, req.GetString("dir", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(locs)
}

func (s *Server) stampNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changes, err := s.svc.Stamp(ctx, req.GetString("dir", ""), stamp.AllOptions())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(changes)
}

func (s *Server) noteHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeline, err := s.svc.Timeline(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(timeline)
}

func (s *Server) getDiff(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawTS, err := req.RequireString("ts")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ts, err := history.ParseTimestamp(rawTS)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := history.ParseDiffType(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch, err := s.svc.Diff(ctx, path, ts, typ)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(patch), nil
}
