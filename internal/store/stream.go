package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/halvorsen/muninn/internal/frontmatter"
	"github.com/halvorsen/muninn/internal/models"
	"github.com/halvorsen/muninn/internal/search"
)

// Record is one enumerated file: either a parsed memory or an isolated
// per-file failure. Exactly one of Memory and Err is set.
type Record struct {
	Memory  *models.Memory
	Path    string // relative to the store root
	Project string // partition directory the file lives in
	Err     error
}

// Failure describes one file a bulk operation could not use.
type Failure struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// Stream lazily yields one Record per stored file. With a project it scans
// only that partition, matched case-insensitively against the directories
// on disk; an unknown project yields nothing. With an empty project every
// partition is scanned and unreadable ones are skipped. Breaking out of
// the loop stops all further directory reads. The scan takes no snapshot:
// files created or removed while iterating may or may not be seen.
func (s *Store) Stream(_ context.Context, project string) (iter.Seq[Record], error) {
	var dirs []string
	if strings.TrimSpace(project) == "" {
		var err error
		dirs, err = s.fs.ListDirs()
		if err != nil {
			return nil, fmt.Errorf("store: list projects: %w", err)
		}
	} else {
		dir, err := s.findProjectDir(project)
		if err != nil {
			return nil, err
		}
		if dir != "" {
			dirs = []string{dir}
		}
	}
	return s.scan(dirs), nil
}

// allDirs returns every partition, or nothing when the root is unreadable.
func (s *Store) allDirs() []string {
	dirs, err := s.fs.ListDirs()
	if err != nil {
		slog.Error("store: list projects failed", slog.String("error", err.Error()))
		return nil
	}
	return dirs
}

// scan is the shared enumeration core. One bad file never aborts the scan;
// it surfaces as a Record with Err set and the iteration moves on.
func (s *Store) scan(dirs []string) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, dir := range dirs {
			files, err := s.fs.ListFiles(dir)
			if err != nil {
				slog.Warn("store: skipping unreadable project dir",
					slog.String("dir", dir),
					slog.String("error", err.Error()))
				continue
			}
			for _, f := range files {
				data, err := s.fs.Read(f.Path)
				if err != nil {
					if !yield(Record{Path: f.Path, Project: dir, Err: fmt.Errorf("read: %w", err)}) {
						return
					}
					continue
				}
				if !utf8.Valid(data) {
					if !yield(Record{Path: f.Path, Project: dir, Err: errors.New("not valid UTF-8")}) {
						return
					}
					continue
				}
				m, err := s.codec.Parse(data, frontmatter.Lenient)
				if err != nil {
					if !yield(Record{Path: f.Path, Project: dir, Err: err}) {
						return
					}
					continue
				}
				if !yield(Record{Memory: m, Path: f.Path, Project: dir}) {
					return
				}
			}
		}
	}
}

// List drains the stream for project and returns memories newest-first,
// stable for equal timestamps, along with the per-file failures that were
// skipped over.
func (s *Store) List(ctx context.Context, project string) ([]*models.Memory, []Failure, error) {
	seq, err := s.Stream(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	var memories []*models.Memory
	var failures []Failure
	for rec := range seq {
		if rec.Err != nil {
			failures = append(failures, Failure{Path: rec.Path, Err: rec.Err})
			slog.Warn("store: skipping unreadable memory file",
				slog.String("path", rec.Path),
				slog.String("error", rec.Err.Error()))
			continue
		}
		memories = append(memories, rec.Memory)
	}
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Timestamp.After(memories[j].Timestamp)
	})
	return memories, failures, nil
}

// Search scores stored memories against query. An empty query degrades to
// listing: every memory in scope with a zero score, newest first. For a
// real query the results carry positive scores only and arrive sorted by
// score descending.
func (s *Store) Search(ctx context.Context, query, project string) ([]search.Result, []Failure, error) {
	seq, err := s.Stream(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	var failures []Failure
	collectFailure := func(rec Record) {
		failures = append(failures, Failure{Path: rec.Path, Err: rec.Err})
		slog.Warn("store: skipping unreadable memory file",
			slog.String("path", rec.Path),
			slog.String("error", rec.Err.Error()))
	}

	if strings.TrimSpace(query) == "" {
		var out []search.Result
		for rec := range seq {
			if rec.Err != nil {
				collectFailure(rec)
				continue
			}
			out = append(out, search.Result{Memory: rec.Memory, Filename: path.Base(rec.Path)})
		}
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Memory.Timestamp.After(out[j].Memory.Timestamp)
		})
		return out, failures, nil
	}

	docs := func(yield func(search.Doc) bool) {
		for rec := range seq {
			if rec.Err != nil {
				collectFailure(rec)
				continue
			}
			if !yield(search.Doc{Memory: rec.Memory, Filename: path.Base(rec.Path)}) {
				return
			}
		}
	}
	results := s.engine.Search(docs, query)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, failures, nil
}
