package search

import (
	"slices"
	"testing"

	"github.com/halvorsen/muninn/internal/models"
)

func testEngine() *Engine {
	return New(DefaultWeights(), nil)
}

func doc(content, filename string, opts ...func(*models.Memory)) Doc {
	m := &models.Memory{Content: content}
	for _, opt := range opts {
		opt(m)
	}
	return Doc{Memory: m, Filename: filename}
}

func withTags(tags ...string) func(*models.Memory) {
	return func(m *models.Memory) { m.Tags = tags }
}

func withProject(p string) func(*models.Memory) {
	return func(m *models.Memory) { m.Project = p }
}

func withCategory(c string) func(*models.Memory) {
	return func(m *models.Memory) { m.Category = c }
}

func TestPrepareDropsShortTokens(t *testing.T) {
	q := testEngine().Prepare("fix a DB io bug")
	if slices.Contains(q.Tokens, "a") || slices.Contains(q.Tokens, "db") || slices.Contains(q.Tokens, "io") {
		t.Errorf("short tokens should be dropped, got %v", q.Tokens)
	}
	if !slices.Contains(q.Tokens, "fix") || !slices.Contains(q.Tokens, "bug") {
		t.Errorf("long tokens missing from %v", q.Tokens)
	}
	// Words keep everything for the fuzzy stage.
	if !slices.Contains(q.Words, "db") {
		t.Errorf("Words should keep short words, got %v", q.Words)
	}
}

func TestPrepareExpandsSynonyms(t *testing.T) {
	q := testEngine().Prepare("bug")
	for _, want := range []string{"bug", "error", "issue", "defect"} {
		if !slices.Contains(q.Tokens, want) {
			t.Errorf("Tokens = %v, missing %q", q.Tokens, want)
		}
	}
	// The original token comes first; expansion only adds.
	if q.Tokens[0] != "bug" {
		t.Errorf("Tokens[0] = %q, want original token first", q.Tokens[0])
	}
}

func TestPrepareEmptySynonymTableDisablesExpansion(t *testing.T) {
	e := New(DefaultWeights(), map[string][]string{})
	q := e.Prepare("bug")
	if len(q.Tokens) != 1 {
		t.Errorf("Tokens = %v, want just the original token", q.Tokens)
	}
}

func TestScoreFieldWeights(t *testing.T) {
	e := testEngine()
	w := DefaultWeights()
	tests := []struct {
		name string
		doc  Doc
		want float64
	}{
		{
			// Content substring + phrase + all-words.
			"content hit",
			doc("deploy went fine", "2026-01-01-memory-000001.md"),
			w.Content + w.Phrase + w.AllWords,
		},
		{
			// Filename substring + all-words (phrase needs content).
			"filename hit",
			doc("nothing relevant", "2026-01-01-deploy-checklist-000001.md"),
			w.Filename + w.AllWords,
		},
		{
			"tag hit",
			doc("nothing relevant", "x.md", withTags("deploy", "ops")),
			w.Tag + w.AllWords,
		},
		{
			"category hit",
			doc("nothing relevant", "x.md", withCategory("deploy")),
			w.Category + w.AllWords,
		},
		{
			"project hit",
			doc("nothing relevant", "x.md", withProject("deploy-tools")),
			w.Project + w.AllWords,
		},
		{
			"no hit",
			doc("nothing relevant", "x.md"),
			0,
		},
	}
	q := e.Prepare("deploy")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Score(tt.doc, q); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreTagCountsOncePerToken(t *testing.T) {
	e := testEngine()
	q := e.Prepare("deploy")
	d := doc("x", "x.md", withTags("deploy", "deploys", "redeploy"))
	// Three matching tags still score the tag weight once.
	want := DefaultWeights().Tag + DefaultWeights().AllWords
	if got := e.Score(d, q); got != want {
		t.Errorf("Score() = %v, want %v", got, want)
	}
}

func TestScorePhraseBonus(t *testing.T) {
	e := testEngine()
	q := e.Prepare("database migration")
	withPhrase := doc("the database migration issue from tuesday", "a.md")
	without := doc("database only", "b.md")

	sWith := e.Score(withPhrase, q)
	sWithout := e.Score(without, q)
	if sWith-sWithout < DefaultWeights().Phrase {
		t.Errorf("phrase-bearing doc should lead by at least the phrase bonus: %v vs %v", sWith, sWithout)
	}
}

func TestScoreFuzzyTypo(t *testing.T) {
	e := testEngine()
	// One substitution away; no substring matches at all.
	q := e.Prepare("memroy")
	d := doc("memory layout notes", "x.md")
	got := e.Score(d, q)
	if got != DefaultWeights().AllWords {
		t.Errorf("Score() = %v, want only the fuzzy bonus %v", got, DefaultWeights().AllWords)
	}
}

func TestScoreSingularMatchesPlural(t *testing.T) {
	e := testEngine()
	q := e.Prepare("bugs")
	d := doc("one bug remains", "x.md")
	// "bugs" is not a substring of the content, but its singular is.
	if got := e.Score(d, q); got != DefaultWeights().AllWords {
		t.Errorf("Score() = %v, want %v", got, DefaultWeights().AllWords)
	}
}

func TestScoreSynonymFindsRelated(t *testing.T) {
	e := testEngine()
	q := e.Prepare("bug")
	d := doc("an error in the cache layer", "x.md")
	// "error" enters via synonym expansion and matches content; the raw
	// word "bug" appears nowhere, so no phrase or all-words bonus.
	if got := e.Score(d, q); got != DefaultWeights().Content {
		t.Errorf("Score() = %v, want %v", got, DefaultWeights().Content)
	}
}

func TestSearchSkipsZeroScores(t *testing.T) {
	e := testEngine()
	docs := []Doc{
		doc("kubernetes rollout plan", "a.md"),
		doc("grocery list", "b.md"),
	}
	seq := func(yield func(Doc) bool) {
		for _, d := range docs {
			if !yield(d) {
				return
			}
		}
	}
	results := e.Search(seq, "kubernetes")
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Filename != "a.md" {
		t.Errorf("Filename = %q, want a.md", results[0].Filename)
	}
	if results[0].Score <= 0 {
		t.Errorf("Score = %v, want > 0", results[0].Score)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"abc", "", 3},
		{"", "xyz", 3},
		{"kitten", "sitting", 3},
		{"memroy", "memory", 2},
		{"deploy", "deplot", 1},
		{"flaw", "lawn", 2},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
