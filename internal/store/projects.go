package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/halvorsen/muninn/internal/apperr"
)

// DefaultProject is the partition used when a memory has no project.
const DefaultProject = "default"

const maxProjectNameLen = 50

var projectStripRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeProject reduces name to the characters allowed in a partition
// directory and truncates it to the maximum length. Returns
// ErrInvalidProjectName when nothing survives, so "../../etc" becomes
// "etc" but "///" is rejected.
func SanitizeProject(name string) (string, error) {
	s := projectStripRe.ReplaceAllString(name, "")
	if len(s) > maxProjectNameLen {
		s = s[:maxProjectNameLen]
	}
	if s == "" {
		return "", fmt.Errorf("store: %w: %q", apperr.ErrInvalidProjectName, name)
	}
	return s, nil
}

// projectDir resolves the partition directory for name, creating it when
// absent. The returned name is relative to the store root.
func (s *Store) projectDir(name string) (string, error) {
	sanitized, err := SanitizeProject(name)
	if err != nil {
		return "", err
	}
	if err := s.fs.EnsureDir(sanitized); err != nil {
		return "", err
	}
	return sanitized, nil
}

// findProjectDir matches name case-insensitively against the partitions
// already on disk. An empty result with nil error means no such partition.
func (s *Store) findProjectDir(name string) (string, error) {
	sanitized, err := SanitizeProject(name)
	if err != nil {
		return "", err
	}
	dirs, err := s.fs.ListDirs()
	if err != nil {
		return "", fmt.Errorf("store: list projects: %w", err)
	}
	for _, d := range dirs {
		if strings.EqualFold(d, sanitized) {
			return d, nil
		}
	}
	return "", nil
}
