package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halvorsen/muninn/internal/models"
	"github.com/halvorsen/muninn/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(testutil.TestStore(t))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so we invoke the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "memory_add":
		result, err = srv.addMemory(ctx, req)
	case "memory_get":
		result, err = srv.getMemory(ctx, req)
	case "memory_list":
		result, err = srv.listMemories(ctx, req)
	case "memory_search":
		result, err = srv.searchMemories(ctx, req)
	case "memory_update":
		result, err = srv.updateMemory(ctx, req)
	case "memory_delete":
		result, err = srv.deleteMemory(ctx, req)
	case "memory_stats":
		result, err = srv.memoryStats(ctx, req)
	case "get_memory_format":
		result, err = srv.getMemoryFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func decodeMemory(t *testing.T, r *mcp.CallToolResult) models.Memory {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool returned error: %s", resultText(r))
	}
	var m models.Memory
	if err := json.Unmarshal([]byte(resultText(r)), &m); err != nil {
		t.Fatalf("decode memory: %v\n%s", err, resultText(r))
	}
	return m
}

func TestAddAndGetMemory(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "memory_add", map[string]interface{}{
		"content": "# Test\nHello",
		"title":   "test",
	})
	added := decodeMemory(t, r)
	if added.ID == "" {
		t.Fatal("added memory has no id")
	}
	if added.Priority != "medium" || added.Status != "active" {
		t.Errorf("defaults = %s/%s, want medium/active", added.Priority, added.Status)
	}

	r = callTool(t, srv, "memory_get", map[string]interface{}{"id": added.ID})
	got := decodeMemory(t, r)
	if got.Content != "# Test\nHello" {
		t.Errorf("content = %q", got.Content)
	}
	if got.AccessCount != 1 {
		t.Errorf("access_count = %d, want 1", got.AccessCount)
	}
}

func TestAddMemory_ClassifiesContent(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "memory_add", map[string]interface{}{
		"content": "```go\nfunc main() {}\n```",
	})
	m := decodeMemory(t, r)
	if m.Meta.ContentType != "code" {
		t.Errorf("content_type = %s, want code", m.Meta.ContentType)
	}
	if m.Meta.Language != "go" {
		t.Errorf("language = %s, want go", m.Meta.Language)
	}
}

func TestAddMemory_SplitsCommaLists(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "memory_add", map[string]interface{}{
		"content": "tagged",
		"tags":    "alpha, beta , alpha,",
	})
	m := decodeMemory(t, r)
	if len(m.Tags) != 2 || m.Tags[0] != "alpha" || m.Tags[1] != "beta" {
		t.Errorf("tags = %v, want [alpha beta]", m.Tags)
	}
}

func TestGetMemory_Missing(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "memory_get", map[string]interface{}{"id": "01ARZ3NDEKTSV4RRFFQ69G5FAV"})
	if !r.IsError {
		t.Error("expected error for missing memory")
	}
}

func TestListMemories(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "a"})
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "b", "project": "side"})

	r := callTool(t, srv, "memory_list", map[string]interface{}{})
	var resp struct {
		Memories []models.Memory `json:"memories"`
		Total    int             `json:"total"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}

	r = callTool(t, srv, "memory_list", map[string]interface{}{"project": "side"})
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode filtered list: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("filtered total = %d, want 1", resp.Total)
	}
}

func TestSearchMemories(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "uniquetoken appears here"})
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "nothing of note"})

	r := callTool(t, srv, "memory_search", map[string]interface{}{"query": "uniquetoken"})
	var resp struct {
		Results []struct {
			Memory models.Memory `json:"memory"`
			Score  float64       `json:"score"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", resp.Results[0].Score)
	}
}

func TestSearchMemories_EmptyQueryListsRecent(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "one"})
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "two"})

	r := callTool(t, srv, "memory_search", map[string]interface{}{})
	var resp struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results = %d, want 2", len(resp.Results))
	}
}

func TestUpdateMemory(t *testing.T) {
	srv := testServer(t)
	added := decodeMemory(t, callTool(t, srv, "memory_add", map[string]interface{}{
		"content": "v1",
		"tags":    "keepme",
	}))

	r := callTool(t, srv, "memory_update", map[string]interface{}{
		"id":     added.ID,
		"status": "archived",
	})
	updated := decodeMemory(t, r)
	if updated.Status != "archived" {
		t.Errorf("status = %s, want archived", updated.Status)
	}
	if updated.Content != "v1" {
		t.Errorf("content changed: %q", updated.Content)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "keepme" {
		t.Errorf("tags = %v, want [keepme]", updated.Tags)
	}
}

func TestUpdateMemory_EmptyStringClearsTags(t *testing.T) {
	srv := testServer(t)
	added := decodeMemory(t, callTool(t, srv, "memory_add", map[string]interface{}{
		"content": "tagged",
		"tags":    "a,b",
	}))

	updated := decodeMemory(t, callTool(t, srv, "memory_update", map[string]interface{}{
		"id":   added.ID,
		"tags": "",
	}))
	if len(updated.Tags) != 0 {
		t.Errorf("tags = %v, want cleared", updated.Tags)
	}
}

func TestUpdateMemory_Missing(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "memory_update", map[string]interface{}{
		"id":      "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"content": "x",
	})
	if !r.IsError {
		t.Error("expected error for missing memory")
	}
}

func TestDeleteMemory(t *testing.T) {
	srv := testServer(t)
	added := decodeMemory(t, callTool(t, srv, "memory_add", map[string]interface{}{"content": "bye"}))

	r := callTool(t, srv, "memory_delete", map[string]interface{}{"id": added.ID})
	if text := resultText(r); text != "deleted: "+added.ID {
		t.Errorf("delete result = %q", text)
	}

	r = callTool(t, srv, "memory_delete", map[string]interface{}{"id": added.ID})
	if !r.IsError {
		t.Error("second delete should report not found")
	}
}

func TestMemoryStats(t *testing.T) {
	srv := testServer(t)
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "x"})
	callTool(t, srv, "memory_add", map[string]interface{}{"content": "y", "project": "lab"})

	r := callTool(t, srv, "memory_stats", map[string]interface{}{})
	var stats struct {
		TotalMemories int `json:"total_memories"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalMemories != 2 {
		t.Errorf("total_memories = %d, want 2", stats.TotalMemories)
	}
}

func TestGetMemoryFormat(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_memory_format", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Memory Format Contract") {
		t.Errorf("contract text missing header: %q", text[:min(len(text), 60)])
	}
	if !strings.Contains(text, "Key order is fixed") {
		t.Error("contract text missing key order rule")
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{"", []string{}},
		{",,", []string{}},
	}
	for _, tt := range tests {
		got := splitCSV(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitCSV(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
