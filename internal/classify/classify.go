// Package classify derives memory metadata from content and caller fields:
// the complexity level, the content type, the fenced-block language, and
// diagram detection.
//
// Everything here is pure. The same memory always classifies the same way,
// so stored values can be recomputed at any time without drift.
package classify

import (
	"regexp"
	"strings"

	"github.com/halvorsen/muninn/internal/models"
)

// Rules holds the thresholds of the complexity cascade. They are heuristics
// carried as configuration data so deployments can tune them without a
// rebuild.
type Rules struct {
	// TagsForLevel2 raises a memory to level 2 when it has more than this
	// many tags.
	TagsForLevel2 int `yaml:"tags_for_level_2"`
	// ContentLenForLevel4 raises a memory to level 4 when its content is
	// longer than this many bytes.
	ContentLenForLevel4 int `yaml:"content_len_for_level_4"`
	// TagsForLevel4 raises a memory to level 4 when it has more than this
	// many tags.
	TagsForLevel4 int `yaml:"tags_for_level_4"`
	// RelatedForLevel4 raises a memory to level 4 when it references more
	// than this many related memories.
	RelatedForLevel4 int `yaml:"related_for_level_4"`
}

// DefaultRules returns the stock thresholds.
func DefaultRules() Rules {
	return Rules{
		TagsForLevel2:       2,
		ContentLenForLevel4: 1000,
		TagsForLevel4:       5,
		RelatedForLevel4:    2,
	}
}

// Complexity evaluates the 1-4 cascade for m. Rules are ordered and a later
// rule can only raise the level, never lower it.
func Complexity(m *models.Memory, r Rules) int {
	level := 1
	if m.Category != "" || len(m.Tags) > r.TagsForLevel2 {
		level = 2
	}
	if m.Project != "" || len(m.Related) > 0 {
		level = 3
	}
	if len(m.Content) > r.ContentLenForLevel4 ||
		len(m.Tags) > r.TagsForLevel4 ||
		len(m.Related) > r.RelatedForLevel4 ||
		HasMermaidDiagram(m.Content) {
		level = 4
	}
	return level
}

// dataFences are fence info strings that mark structured data rather than
// executable code.
var dataFences = map[string]bool{
	"json":    true,
	"yaml":    true,
	"yml":     true,
	"mermaid": true,
}

var (
	codeWordRe = regexp.MustCompile(`\b(function|class|import|def)\s+\w`)
	sqlRe      = regexp.MustCompile(`(?is)\b(select|insert|update|delete|create|alter)\b.*\b(from|into|table|database|where)\b`)
)

// Kind classifies content as code, structured data, or plain text. The
// cascade is first-match: code markers win over structured markers, and
// anything else is text.
func Kind(content string) models.ContentType {
	if hasCodeFence(content) || hasCodeMarker(content) {
		return models.ContentCode
	}
	if hasStructuredMarker(content) {
		return models.ContentStructured
	}
	return models.ContentText
}

// hasCodeFence reports whether content opens a fenced block whose info
// string is not one of the data formats. Splitting on the fence marker
// leaves fenced segments at odd indexes, so closing fences never count.
func hasCodeFence(content string) bool {
	parts := strings.Split(content, "```")
	for i := 1; i < len(parts); i += 2 {
		if !dataFences[fenceInfo(parts[i])] {
			return true
		}
	}
	return false
}

func hasCodeMarker(content string) bool {
	if codeWordRe.MatchString(content) {
		return true
	}
	if strings.Contains(strings.ToLower(content), "<script") {
		return true
	}
	return sqlRe.MatchString(content)
}

func hasStructuredMarker(content string) bool {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "```json") || strings.Contains(lower, "```yaml") || strings.Contains(lower, "```mermaid") {
		return true
	}
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{") ||
		strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "---")
}

// Language returns the info string of the first fenced block, lowercased,
// or "" when there is none. A mermaid fence marks a diagram, not a
// language.
func Language(content string) string {
	parts := strings.Split(content, "```")
	if len(parts) < 2 {
		return ""
	}
	info := fenceInfo(parts[1])
	if info == "mermaid" {
		return ""
	}
	return info
}

// fenceInfo extracts the info string from the text following a fence
// marker: the remainder of the marker's line, trimmed and lowercased.
func fenceInfo(segment string) string {
	if i := strings.IndexByte(segment, '\n'); i >= 0 {
		segment = segment[:i]
	}
	return strings.ToLower(strings.TrimSpace(segment))
}

// mermaidKeywords are diagram-type openers that identify mermaid source
// even outside a tagged fence.
var mermaidKeywords = []string{
	"graph td",
	"graph lr",
	"graph tb",
	"graph rl",
	"flowchart",
	"sequencediagram",
	"classdiagram",
	"statediagram",
	"erdiagram",
	"gantt",
	"mindmap",
}

// HasMermaidDiagram reports whether content contains a mermaid diagram,
// either as a tagged fence or as a bare diagram-type keyword.
func HasMermaidDiagram(content string) bool {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "```mermaid") {
		return true
	}
	for _, kw := range mermaidKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Apply recomputes every derived field of m in place: the metadata block
// and the complexity level. Values already present are overwritten.
func Apply(m *models.Memory, r Rules) {
	m.Meta = models.Metadata{
		ContentType:    Kind(m.Content),
		Language:       Language(m.Content),
		Size:           len(m.Content),
		MermaidDiagram: HasMermaidDiagram(m.Content),
	}
	m.Complexity = Complexity(m, r)
}
