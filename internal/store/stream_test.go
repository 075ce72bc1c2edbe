package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func addSpaced(t *testing.T, s *Store, p AddParams) string {
	t.Helper()
	m, err := s.Add(context.Background(), p)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Timestamps are millisecond precision; keep them distinct.
	time.Sleep(2 * time.Millisecond)
	return m.ID
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	first := addSpaced(t, s, AddParams{Content: "oldest"})
	addSpaced(t, s, AddParams{Content: "middle"})
	last := addSpaced(t, s, AddParams{Content: "newest"})

	memories, failures, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("failures = %v", failures)
	}
	if len(memories) != 3 {
		t.Fatalf("len = %d, want 3", len(memories))
	}
	if memories[0].ID != last || memories[2].ID != first {
		t.Errorf("order = [%s %s %s], want newest first", memories[0].Content, memories[1].Content, memories[2].Content)
	}
}

func TestListProjectScope(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "in webapp", Project: "webapp"})
	addSpaced(t, s, AddParams{Content: "in infra", Project: "infra"})
	addSpaced(t, s, AddParams{Content: "homeless"})

	memories, _, err := s.List(context.Background(), "webapp")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(memories) != 1 || memories[0].Content != "in webapp" {
		t.Errorf("scoped list = %d items", len(memories))
	}

	// Project match is case-insensitive against the on-disk partition.
	memories, _, err = s.List(context.Background(), "WEBAPP")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(memories) != 1 {
		t.Errorf("case-insensitive list = %d items, want 1", len(memories))
	}
}

func TestListUnknownProjectIsEmpty(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "x"})

	memories, failures, err := s.List(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(memories) != 0 || len(failures) != 0 {
		t.Errorf("unknown project = %d memories, %d failures, want none", len(memories), len(failures))
	}
}

func TestListToleratesForeignFiles(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "proper"})

	// A hand-dropped file without a metadata block still lists.
	foreign := filepath.Join(s.Root(), DefaultProject, "pasted-note.md")
	if err := os.WriteFile(foreign, []byte("just some pasted text"), 0o644); err != nil {
		t.Fatal(err)
	}

	memories, failures, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("failures = %v, want none (lenient parse)", failures)
	}
	if len(memories) != 2 {
		t.Fatalf("len = %d, want 2", len(memories))
	}
	var foundForeign bool
	for _, m := range memories {
		if m.Content == "just some pasted text" {
			foundForeign = true
			if m.ID == "" {
				t.Error("foreign file should get a synthesized id")
			}
		}
	}
	if !foundForeign {
		t.Error("foreign file missing from list")
	}
}

func TestListIsolatesBinaryFiles(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "healthy"})

	bad := filepath.Join(s.Root(), DefaultProject, "2025-01-02-noise-000001.md")
	if err := os.WriteFile(bad, []byte{0xff, 0xfe, 0x00, 0x12}, 0o644); err != nil {
		t.Fatal(err)
	}

	memories, failures, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(memories) != 1 {
		t.Errorf("len(memories) = %d, want 1", len(memories))
	}
	if len(failures) != 1 {
		t.Fatalf("len(failures) = %d, want 1", len(failures))
	}
	if filepath.Base(failures[0].Path) != "2025-01-02-noise-000001.md" {
		t.Errorf("failure path = %q", failures[0].Path)
	}
	if failures[0].Err == nil {
		t.Error("failure carries no error")
	}
}

func TestStreamStopsOnBreak(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		addSpaced(t, s, AddParams{Content: "bulk"})
	}
	seq, err := s.Stream(context.Background(), "")
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	seen := 0
	for range seq {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("seen = %d, want 2", seen)
	}
}

func TestSearchRelevance(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{
		Content: "URGENT: fix login bug before demo!",
		Tags:    []string{"bug", "urgent"},
		Project: "webapp",
	})
	addSpaced(t, s, AddParams{Content: "set up the coffee machine", Project: "webapp"})

	results, failures, err := s.Search(context.Background(), "login", "webapp")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("failures = %v", failures)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1 (zero scores excluded)", len(results))
	}
	if results[0].Score <= 0 {
		t.Errorf("Score = %v, want > 0", results[0].Score)
	}
	if results[0].Filename == "" {
		t.Error("result should carry its backing filename")
	}
}

func TestSearchRanksPhraseAboveSingleWord(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "notes about database tuning"})
	addSpaced(t, s, AddParams{Content: "the database migration issue from last week"})

	results, _, err := s.Search(context.Background(), "database migration", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Memory.Content != "the database migration issue from last week" {
		t.Errorf("top result = %q, want the phrase match first", results[0].Memory.Content)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v <= %v", results[0].Score, results[1].Score)
	}
}

func TestSearchEmptyQueryLists(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "older"})
	addSpaced(t, s, AddParams{Content: "newer"})

	results, _, err := s.Search(context.Background(), "  ", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want every memory", len(results))
	}
	if results[0].Memory.Content != "newer" {
		t.Errorf("empty query should list newest first, got %q", results[0].Memory.Content)
	}
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("Score = %v, want 0 for empty query", r.Score)
		}
	}
}

func TestSearchProjectScope(t *testing.T) {
	s := newTestStore(t)
	addSpaced(t, s, AddParams{Content: "deploy notes here", Project: "alpha"})
	addSpaced(t, s, AddParams{Content: "deploy notes there", Project: "beta"})

	results, _, err := s.Search(context.Background(), "deploy", "alpha")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Memory.Project != "alpha" {
		t.Errorf("Project = %q, want alpha", results[0].Memory.Project)
	}
}
