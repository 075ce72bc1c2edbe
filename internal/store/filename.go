package store

import (
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"
)

const (
	maxSlugLen       = 40
	filenameAttempts = 5
)

// slugify renders s as a lowercase filename fragment: runs of anything
// outside [a-z0-9] collapse to single dashes. An empty result falls back
// to "memory".
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	if out == "" {
		return "memory"
	}
	return out
}

// newFilename allocates a file name inside dir of the form
// <date>-<slug>-<6 digits>.md, re-rolling the numeric suffix on collision.
func (s *Store) newFilename(dir, title string, now time.Time) (string, error) {
	slug := slugify(title)
	date := now.UTC().Format("2006-01-02")
	for range filenameAttempts {
		name := fmt.Sprintf("%s-%s-%06d.md", date, slug, rand.Intn(1_000_000))
		if !s.fs.Exists(path.Join(dir, name)) {
			return name, nil
		}
	}
	return "", fmt.Errorf("store: could not allocate a unique filename for %q in %s", slug, dir)
}
