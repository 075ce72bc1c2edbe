package api

import (
	"github.com/halvorsen/muninn/internal/models"
	"github.com/halvorsen/muninn/internal/search"
	"github.com/halvorsen/muninn/internal/store"
)

// AddMemoryRequest is the request body for creating a memory. Complexity and
// content metadata are derived server-side and cannot be supplied.
type AddMemoryRequest struct {
	Content  string   `json:"content" example:"# Deploy runbook\nSteps..." validate:"required"`
	Title    string   `json:"title,omitempty" example:"deploy runbook"`
	Category string   `json:"category,omitempty" example:"ops"`
	Project  string   `json:"project,omitempty" example:"billing"`
	Tags     []string `json:"tags,omitempty" example:"deploy,runbook"`
	Priority string   `json:"priority,omitempty" example:"high"`
	Status   string   `json:"status,omitempty" example:"active"`
	Related  []string `json:"related_memories,omitempty"`
}

// UpdateMemoryRequest is the request body for updating a memory. Absent
// fields keep their stored values; tags and related_memories replace
// wholesale when present.
type UpdateMemoryRequest struct {
	Content  *string  `json:"content,omitempty" example:"# Updated\nContent"`
	Category *string  `json:"category,omitempty" example:"ops"`
	Project  *string  `json:"project,omitempty" example:"billing"`
	Tags     []string `json:"tags,omitempty" example:"deploy"`
	Priority *string  `json:"priority,omitempty" example:"low"`
	Status   *string  `json:"status,omitempty" example:"archived"`
	Related  []string `json:"related_memories,omitempty"`
}

// MemoryDetail is the full memory response type (aliased from the domain layer).
type MemoryDetail = models.Memory

// SearchResult is a single scored hit (aliased from the search engine).
type SearchResult = search.Result

// FailedFile reports one file a bulk read could not parse.
type FailedFile struct {
	Path  string `json:"path" example:"default/2025-01-02-broken-000001.md" validate:"required"`
	Error string `json:"error" example:"frontmatter: missing opening delimiter" validate:"required"`
}

// MemoryListResponse wraps a listing, newest first.
type MemoryListResponse struct {
	Memories    []*MemoryDetail `json:"memories" validate:"required"`
	Total       int             `json:"total" example:"42" validate:"required"`
	FailedFiles []FailedFile    `json:"failed_files,omitempty"`
}

// SearchResponse wraps search results, best score first.
type SearchResponse struct {
	Results     []SearchResult `json:"results" validate:"required"`
	FailedFiles []FailedFile   `json:"failed_files,omitempty"`
}

// StatsResponse is the store summary (aliased from the domain layer).
type StatsResponse = store.Stats

func toFailedFiles(fails []store.Failure) []FailedFile {
	out := make([]FailedFile, 0, len(fails))
	for _, f := range fails {
		ff := FailedFile{Path: f.Path}
		if f.Err != nil {
			ff.Error = f.Err.Error()
		}
		out = append(out, ff)
	}
	return out
}
