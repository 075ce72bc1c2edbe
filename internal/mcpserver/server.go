// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Muninn memory tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halvorsen/muninn/internal/store"
)

// Server wraps the MCP server with Muninn tools.
type Server struct {
	mcp *server.MCPServer
	st  *store.Store
}

// New creates a new MCP server with all Muninn tools registered.
func New(st *store.Store) *Server {
	s := &Server{st: st}

	s.mcp = server.NewMCPServer(
		"Muninn",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("memory_add",
		mcp.WithDescription("Store a new memory. Complexity and content metadata "+
			"are classified automatically from the content; do not try to supply them."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Memory content (Markdown)")),
		mcp.WithString("title", mcp.Description("Short title, used only to name the file")),
		mcp.WithString("category", mcp.Description("Free-form grouping label")),
		mcp.WithString("project", mcp.Description("Project partition (letters, digits, - and _)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("priority", mcp.Description("low, medium or high (default medium)")),
		mcp.WithString("status", mcp.Description("active, archived or reference (default active)")),
		mcp.WithString("related_memories", mcp.Description("Comma-separated ids of related memories")),
	), s.addMemory)

	s.mcp.AddTool(mcp.NewTool("memory_get",
		mcp.WithDescription("Fetch one memory by id. Reading bumps its access counter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id (ULID)")),
	), s.getMemory)

	s.mcp.AddTool(mcp.NewTool("memory_list",
		mcp.WithDescription("List stored memories, newest first."),
		mcp.WithString("project", mcp.Description("Optional project partition (empty for all)")),
	), s.listMemories)

	s.mcp.AddTool(mcp.NewTool("memory_search",
		mcp.WithDescription("Weighted search across content, tags, categories and projects. "+
			"An empty query lists recent memories."),
		mcp.WithString("query", mcp.Description("Search query")),
		mcp.WithString("project", mcp.Description("Optional project partition to search in")),
	), s.searchMemories)

	s.mcp.AddTool(mcp.NewTool("memory_update",
		mcp.WithDescription("Change fields of a stored memory. Absent parameters keep their "+
			"stored values; tags and related_memories replace wholesale. Changing the project "+
			"moves the file into the new partition."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id (ULID)")),
		mcp.WithString("content", mcp.Description("Replacement content")),
		mcp.WithString("category", mcp.Description("Replacement category")),
		mcp.WithString("project", mcp.Description("Target project (empty string moves back to default)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags (empty string clears)")),
		mcp.WithString("priority", mcp.Description("low, medium or high")),
		mcp.WithString("status", mcp.Description("active, archived or reference")),
		mcp.WithString("related_memories", mcp.Description("Comma-separated related ids (empty string clears)")),
	), s.updateMemory)

	s.mcp.AddTool(mcp.NewTool("memory_delete",
		mcp.WithDescription("Delete a memory by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id (ULID)")),
	), s.deleteMemory)

	s.mcp.AddTool(mcp.NewTool("memory_stats",
		mcp.WithDescription("Totals and per-project counts for the store."),
	), s.memoryStats)

	s.mcp.AddTool(mcp.NewTool("get_memory_format",
		mcp.WithDescription("Returns the canonical Muninn memory file format. "+
			"Call this before editing memory files by hand."),
	), s.getMemoryFormat)

	// Resource: memory format contract.
	s.mcp.AddResource(
		mcp.NewResource("muninn://memory-format", "Memory Format Contract",
			mcp.WithResourceDescription("Canonical on-disk format of Muninn memory files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMemoryFormatResource,
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

// splitCSV turns a comma-separated parameter into a slice, dropping empty
// items. The result is never nil so callers can distinguish "clear" from
// "leave unchanged."
func splitCSV(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// stringArg reads an optional string parameter, reporting whether the caller
// supplied it at all.
func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	v, ok := raw.(string)
	return v, ok
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) addMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	p := store.AddParams{Content: content}
	if v, ok := stringArg(args, "title"); ok {
		p.Title = v
	}
	if v, ok := stringArg(args, "category"); ok {
		p.Category = v
	}
	if v, ok := stringArg(args, "project"); ok {
		p.Project = v
	}
	if v, ok := stringArg(args, "tags"); ok {
		p.Tags = splitCSV(v)
	}
	if v, ok := stringArg(args, "priority"); ok {
		p.Priority = v
	}
	if v, ok := stringArg(args, "status"); ok {
		p.Status = v
	}
	if v, ok := stringArg(args, "related_memories"); ok {
		p.Related = splitCSV(v)
	}

	m, err := s.st.Add(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(m), nil
}

func (s *Server) getMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.st.Get(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(m), nil
}

func (s *Server) listMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := ""
	if p, err := req.RequireString("project"); err == nil {
		project = p
	}

	memories, fails, err := s.st.List(ctx, project)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := map[string]any{
		"memories": memories,
		"total":    len(memories),
	}
	if len(fails) > 0 {
		out["failed_files"] = failPaths(fails)
	}
	return jsonResult(out), nil
}

func (s *Server) searchMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := ""
	if q, err := req.RequireString("query"); err == nil {
		query = q
	}
	project := ""
	if p, err := req.RequireString("project"); err == nil {
		project = p
	}

	results, fails, err := s.st.Search(ctx, query, project)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := map[string]any{
		"results": results,
	}
	if len(fails) > 0 {
		out["failed_files"] = failPaths(fails)
	}
	return jsonResult(out), nil
}

func (s *Server) updateMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	var p store.UpdateParams
	if v, ok := stringArg(args, "content"); ok {
		p.Content = &v
	}
	if v, ok := stringArg(args, "category"); ok {
		p.Category = &v
	}
	if v, ok := stringArg(args, "project"); ok {
		p.Project = &v
	}
	if v, ok := stringArg(args, "tags"); ok {
		p.Tags = splitCSV(v)
	}
	if v, ok := stringArg(args, "priority"); ok {
		p.Priority = &v
	}
	if v, ok := stringArg(args, "status"); ok {
		p.Status = &v
	}
	if v, ok := stringArg(args, "related_memories"); ok {
		p.Related = splitCSV(v)
	}

	m, err := s.st.Update(ctx, id, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(m), nil
}

func (s *Server) deleteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deleted, err := s.st.Delete(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !deleted {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) memoryStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.st.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats), nil
}

func (s *Server) getMemoryFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MemoryFormatContract), nil
}

func (s *Server) readMemoryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "muninn://memory-format",
			MIMEType: "text/markdown",
			Text:     MemoryFormatContract,
		},
	}, nil
}

func failPaths(fails []store.Failure) []string {
	out := make([]string, 0, len(fails))
	for _, f := range fails {
		out = append(out, f.Path)
	}
	return out
}
