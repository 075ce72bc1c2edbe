// Package frontmatter implements the on-disk codec for memory files: a
// delimited key-value metadata block followed by the raw content.
//
// The grammar is deliberately small. One `key: value` pair per line, list
// values in bracket form, a single indented metadata sub-block, and two
// delimiter lines around the whole thing. Generation always emits keys in
// a fixed order so files diff cleanly; parsing is tolerant by default so
// hand-edited or foreign files still load.
package frontmatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/halvorsen/muninn/internal/classify"
	"github.com/halvorsen/muninn/internal/models"
)

// Delimiter is the marker line that opens and closes the metadata block.
const Delimiter = "---"

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Mode selects how forgiving Parse is about malformed input.
type Mode int

const (
	// Lenient synthesizes missing fields and treats undelimited input as
	// plain content. Listing and search read in this mode.
	Lenient Mode = iota
	// Strict returns an error for any structural problem instead of
	// repairing it. The integrity scan reads in this mode.
	Strict
)

// Codec generates and parses memory files with a fixed set of
// classification rules.
type Codec struct {
	rules classify.Rules
}

// New returns a codec that derives complexity and metadata with rules.
func New(rules classify.Rules) *Codec {
	return &Codec{rules: rules}
}

// Generate renders m in canonical form. Derived fields (complexity and the
// metadata block) are recomputed from the memory's current fields first, so
// stale values on m are overwritten rather than persisted.
func (c *Codec) Generate(m *models.Memory) []byte {
	classify.Apply(m, c.rules)

	var b strings.Builder
	b.WriteString(Delimiter + "\n")
	writeKV(&b, "id", m.ID)
	writeKV(&b, "timestamp", formatTime(m.Timestamp))
	writeKV(&b, "complexity", strconv.Itoa(m.Complexity))
	if m.Category != "" {
		writeKV(&b, "category", m.Category)
	}
	if m.Project != "" {
		writeKV(&b, "project", m.Project)
	}
	if len(m.Tags) > 0 {
		writeKV(&b, "tags", formatList(m.Tags))
	}
	writeKV(&b, "priority", string(m.Priority))
	writeKV(&b, "status", string(m.Status))
	if len(m.Related) > 0 {
		writeKV(&b, "related_memories", formatList(m.Related))
	}
	writeKV(&b, "access_count", strconv.Itoa(m.AccessCount))
	writeKV(&b, "last_accessed", formatTime(m.LastAccessed))
	b.WriteString("metadata:\n")
	b.WriteString("  content_type: " + string(m.Meta.ContentType) + "\n")
	if m.Meta.Language != "" {
		b.WriteString("  language: " + m.Meta.Language + "\n")
	}
	b.WriteString("  size: " + strconv.Itoa(m.Meta.Size) + "\n")
	b.WriteString("  mermaid_diagram: " + strconv.FormatBool(m.Meta.MermaidDiagram) + "\n")
	b.WriteString(Delimiter + "\n")
	b.WriteString(m.Content)
	return []byte(b.String())
}

// Parse decodes raw file bytes into a Memory.
//
// In Lenient mode, input without a metadata block becomes the content of a
// fresh memory with a synthesized id and timestamps, unknown keys are
// skipped, and malformed scalars fall back to defaults. Strict mode returns
// an error describing every problem found instead.
func (c *Codec) Parse(raw []byte, mode Mode) (*models.Memory, error) {
	text := string(raw)
	block, body, found := split(text)
	if !found {
		if mode == Strict {
			return nil, errors.New("frontmatter: missing metadata block")
		}
		return c.synthesize(strings.TrimSpace(text)), nil
	}

	m := &models.Memory{
		Content:  body,
		Priority: models.PriorityMedium,
		Status:   models.StatusActive,
	}
	var problems []string

	for _, rawLine := range strings.Split(block, "\n") {
		line := strings.TrimRight(rawLine, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			// Indented lines belong to the metadata sub-block, which is
			// derived data and recomputed below.
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			problems = append(problems, fmt.Sprintf("unparseable line %q", line))
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "id":
			m.ID = val
		case "timestamp":
			t, err := parseTime(val)
			if err != nil {
				problems = append(problems, fmt.Sprintf("bad timestamp %q", val))
				continue
			}
			m.Timestamp = t
		case "category":
			m.Category = val
		case "project":
			m.Project = val
		case "tags":
			m.Tags = parseList(val)
		case "priority":
			if !models.ValidPriority(strings.ToLower(val)) {
				problems = append(problems, fmt.Sprintf("unknown priority %q", val))
			}
			m.Priority = models.NormalizePriority(val)
		case "status":
			if !models.ValidStatus(strings.ToLower(val)) {
				problems = append(problems, fmt.Sprintf("unknown status %q", val))
			}
			m.Status = models.NormalizeStatus(val)
		case "related_memories":
			m.Related = parseList(val)
		case "access_count":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				problems = append(problems, fmt.Sprintf("bad access_count %q", val))
				continue
			}
			m.AccessCount = n
		case "last_accessed":
			t, err := parseTime(val)
			if err != nil {
				problems = append(problems, fmt.Sprintf("bad last_accessed %q", val))
				continue
			}
			m.LastAccessed = t
		case "complexity", "metadata":
			// Derived on every write; the stored copy is only a cache.
		default:
			// Unknown keys are skipped so foreign files stay readable.
		}
	}

	if m.ID == "" {
		problems = append(problems, "missing id")
		m.ID = models.NewID()
	}
	if m.Timestamp.IsZero() {
		problems = append(problems, "missing timestamp")
		m.Timestamp = models.NowUTC()
	}
	if m.LastAccessed.IsZero() {
		m.LastAccessed = m.Timestamp
	}
	if mode == Strict && len(problems) > 0 {
		return nil, fmt.Errorf("frontmatter: %s", strings.Join(problems, "; "))
	}
	classify.Apply(m, c.rules)
	return m, nil
}

// synthesize wraps bare text in a fresh memory so lenient parsing never
// fails on files the store did not write.
func (c *Codec) synthesize(content string) *models.Memory {
	now := models.NowUTC()
	m := &models.Memory{
		ID:           models.NewID(),
		Content:      content,
		Timestamp:    now,
		Priority:     models.PriorityMedium,
		Status:       models.StatusActive,
		LastAccessed: now,
	}
	classify.Apply(m, c.rules)
	return m
}

// split separates the metadata block from the body. The opening delimiter
// must be the first non-blank line and the closing delimiter a later line
// that is exactly the marker.
func split(text string) (block, body string, found bool) {
	lines := strings.Split(text, "\n")
	start := -1
	for i, ln := range lines {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		if strings.TrimRight(ln, "\r") == Delimiter {
			start = i
		}
		break
	}
	if start < 0 {
		return "", "", false
	}
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimRight(lines[j], "\r") == Delimiter {
			return strings.Join(lines[start+1:j], "\n"), strings.Join(lines[j+1:], "\n"), true
		}
	}
	return "", "", false
}

func writeKV(b *strings.Builder, key, val string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(val)
	b.WriteByte('\n')
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(val string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// parseList accepts the canonical bracket form "[a, b]" and the bare comma
// form "a, b". Items may be quoted; duplicates collapse.
func parseList(val string) []string {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") && strings.HasSuffix(val, "]") {
		val = val[1 : len(val)-1]
	}
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return models.NormalizeStringSet(out)
}
