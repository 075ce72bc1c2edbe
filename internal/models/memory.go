// Package models defines the domain types for Muninn.
package models

import (
	"strings"
	"time"
)

// Priority is the stored importance of a memory.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether s names a known priority.
func ValidPriority(s string) bool {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// NormalizePriority maps s onto a known priority, defaulting to medium.
func NormalizePriority(s string) Priority {
	s = strings.ToLower(strings.TrimSpace(s))
	if ValidPriority(s) {
		return Priority(s)
	}
	return PriorityMedium
}

// Status is the lifecycle label of a memory. Transitions are never
// enforced; the value is descriptive only.
type Status string

const (
	StatusActive    Status = "active"
	StatusArchived  Status = "archived"
	StatusReference Status = "reference"
)

// ValidStatus reports whether s names a known status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusActive, StatusArchived, StatusReference:
		return true
	}
	return false
}

// NormalizeStatus maps s onto a known status, defaulting to active.
func NormalizeStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	if ValidStatus(s) {
		return Status(s)
	}
	return StatusActive
}

// ContentType classifies the body of a memory.
type ContentType string

const (
	ContentCode       ContentType = "code"
	ContentStructured ContentType = "structured"
	ContentText       ContentType = "text"
)

// Metadata holds fields derived from the memory content. These are
// recomputed on every write and never accepted from callers.
type Metadata struct {
	ContentType    ContentType `json:"content_type"`
	Language       string      `json:"language,omitempty"`
	Size           int         `json:"size"`
	MermaidDiagram bool        `json:"mermaid_diagram"`
}

// Memory is the unit of storage: one Markdown file per memory, metadata in
// a delimited block at the top, raw content below it.
type Memory struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	Complexity   int       `json:"complexity"`
	Category     string    `json:"category,omitempty"`
	Project      string    `json:"project,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Priority     Priority  `json:"priority"`
	Status       Status    `json:"status"`
	Related      []string  `json:"related_memories,omitempty"`
	AccessCount  int       `json:"access_count"`
	LastAccessed time.Time `json:"last_accessed"`
	Meta         Metadata  `json:"metadata"`
}

// NormalizeStringSet trims entries, drops empties, and deduplicates while
// keeping first-seen order. Tags and related-memory ids are sets whose
// display order is insertion order.
func NormalizeStringSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NowUTC returns the current instant the way timestamps are stored: UTC,
// millisecond precision. Truncating here keeps generate/parse round trips
// exact.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
