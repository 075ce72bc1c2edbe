// Package search implements the weighted fuzzy query engine. Scoring is a
// plain additive model over field-level substring matches, with a phrase
// bonus for verbatim hits and a fuzzy bonus when every query word is found
// somewhere in the document. There is no index; callers stream documents
// through the engine and rank the results themselves.
package search

import (
	"iter"
	"strings"

	"github.com/halvorsen/muninn/internal/models"
)

// Weights holds the scoring contribution of each matched field plus the
// tokenizer and fuzzy-match bounds. Like the classifier thresholds these
// are configuration data, not constants.
type Weights struct {
	Content  float64 `yaml:"content"`
	Filename float64 `yaml:"filename"`
	Tag      float64 `yaml:"tag"`
	Category float64 `yaml:"category"`
	Project  float64 `yaml:"project"`
	// Phrase is the bonus for the full query appearing verbatim in the
	// content.
	Phrase float64 `yaml:"phrase"`
	// AllWords is the bonus when every query word matches at least
	// fuzzily somewhere in the document.
	AllWords float64 `yaml:"all_words"`
	// MinTokenLen is the shortest token kept by the tokenizer.
	MinTokenLen int `yaml:"min_token_len"`
	// MaxEditDistance bounds the Levenshtein stage of fuzzy matching.
	MaxEditDistance int `yaml:"max_edit_distance"`
}

// DefaultWeights returns the stock scoring model.
func DefaultWeights() Weights {
	return Weights{
		Content:         1.0,
		Filename:        2.0,
		Tag:             1.5,
		Category:        1.2,
		Project:         1.8,
		Phrase:          3.0,
		AllWords:        0.5,
		MinTokenLen:     3,
		MaxEditDistance: 2,
	}
}

// Doc is one searchable memory together with the name of its backing file.
type Doc struct {
	Memory   *models.Memory
	Filename string
}

// Result pairs a memory with its score. The engine returns results in
// arbitrary order; callers needing ranked output sort by Score descending.
type Result struct {
	Memory   *models.Memory `json:"memory"`
	Filename string         `json:"filename"`
	Score    float64        `json:"score"`
}

// Engine scores memories against tokenized queries.
type Engine struct {
	weights  Weights
	synonyms map[string][]string
}

// New creates an engine. A nil synonym table falls back to the built-in
// one; pass an empty map to disable expansion entirely.
func New(w Weights, synonyms map[string][]string) *Engine {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Engine{weights: w, synonyms: synonyms}
}

// Query is a prepared search input.
type Query struct {
	Raw    string
	Tokens []string // kept tokens plus synonym expansion, deduplicated
	Words  []string // every lowercased word of the raw query
}

// Prepare lowercases and tokenizes raw, drops tokens shorter than the
// configured minimum, and widens the set through the synonym table.
// Original tokens are always retained; expansion only ever adds.
func (e *Engine) Prepare(raw string) Query {
	words := strings.Fields(strings.ToLower(raw))

	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	add := func(tok string) {
		if _, dup := seen[tok]; dup {
			return
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	for _, w := range words {
		if len(w) < e.weights.MinTokenLen {
			continue
		}
		add(w)
	}
	for _, tok := range append([]string(nil), tokens...) {
		for _, syn := range e.synonyms[tok] {
			add(strings.ToLower(syn))
		}
	}
	return Query{Raw: raw, Tokens: tokens, Words: words}
}

// Score accumulates the weighted score of doc against q. Zero means no
// match at all.
func (e *Engine) Score(doc Doc, q Query) float64 {
	m := doc.Memory
	content := strings.ToLower(m.Content)
	filename := strings.ToLower(doc.Filename)
	category := strings.ToLower(m.Category)
	project := strings.ToLower(m.Project)
	tags := make([]string, len(m.Tags))
	for i, tag := range m.Tags {
		tags[i] = strings.ToLower(tag)
	}

	var score float64
	for _, tok := range q.Tokens {
		if strings.Contains(content, tok) {
			score += e.weights.Content
		}
		if strings.Contains(filename, tok) {
			score += e.weights.Filename
		}
		for _, tag := range tags {
			if strings.Contains(tag, tok) {
				score += e.weights.Tag
				break
			}
		}
		if category != "" && strings.Contains(category, tok) {
			score += e.weights.Category
		}
		if project != "" && strings.Contains(project, tok) {
			score += e.weights.Project
		}
	}

	phrase := strings.ToLower(strings.TrimSpace(q.Raw))
	if phrase != "" && strings.Contains(content, phrase) {
		score += e.weights.Phrase
	}
	if e.allWordsMatch(q.Words, content, filename, category, project, tags) {
		score += e.weights.AllWords
	}
	return score
}

// Search scores every document in docs against raw and returns the
// non-zero results in arbitrary order.
func (e *Engine) Search(docs iter.Seq[Doc], raw string) []Result {
	q := e.Prepare(raw)
	var out []Result
	for doc := range docs {
		s := e.Score(doc, q)
		if s <= 0 {
			continue
		}
		out = append(out, Result{Memory: doc.Memory, Filename: doc.Filename, Score: s})
	}
	return out
}

// allWordsMatch reports whether every word of the raw query is found in the
// document: verbatim substring first, then the naive singular form, then
// bounded edit distance against individual document words.
func (e *Engine) allWordsMatch(words []string, content, filename, category, project string, tags []string) bool {
	if len(words) == 0 {
		return false
	}
	parts := append([]string{content, filename, category, project}, tags...)
	text := strings.Join(parts, " ")
	textWords := strings.Fields(text)
	for _, w := range words {
		if !e.wordMatches(w, text, textWords) {
			return false
		}
	}
	return true
}

func (e *Engine) wordMatches(word, text string, textWords []string) bool {
	if strings.Contains(text, word) {
		return true
	}
	// Naive singular: "bugs" still finds "bug".
	if len(word) > 1 && strings.Contains(text, word[:len(word)-1]) {
		return true
	}
	limit := e.weights.MaxEditDistance
	if limit <= 0 {
		return false
	}
	for _, tw := range textWords {
		if diff := len(tw) - len(word); diff > limit || diff < -limit {
			continue
		}
		if Distance(word, tw) <= limit {
			return true
		}
	}
	return false
}
