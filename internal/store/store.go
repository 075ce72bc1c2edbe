// Package store implements the Markdown-backed memory store: project
// partitions on disk, the frontmatter codec glue, lazy enumeration, and the
// operation surface consumed by the HTTP API and the MCP server.
//
// Every memory is one file. There is no database and no index; reads scan,
// writes rewrite the whole file atomically, and the last writer wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/halvorsen/muninn/internal/classify"
	"github.com/halvorsen/muninn/internal/frontmatter"
	"github.com/halvorsen/muninn/internal/models"
	"github.com/halvorsen/muninn/internal/search"
	"github.com/halvorsen/muninn/internal/storage"
)

// Config holds the tunable pieces of a Store. Zero-value fields fall back
// to the package defaults.
type Config struct {
	DefaultProject string
	Rules          classify.Rules
	Weights        search.Weights
	Synonyms       map[string][]string
}

// DefaultConfig returns the stock store configuration.
func DefaultConfig() Config {
	return Config{
		DefaultProject: DefaultProject,
		Rules:          classify.DefaultRules(),
		Weights:        search.DefaultWeights(),
		Synonyms:       search.DefaultSynonyms(),
	}
}

// Store is the memory store facade.
type Store struct {
	fs             storage.Provider
	codec          *frontmatter.Codec
	engine         *search.Engine
	defaultProject string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New opens a store over baseDir, creating the directory and the default
// project partition when absent.
func New(baseDir string, cfg Config) (*Store, error) {
	if cfg.DefaultProject == "" {
		cfg.DefaultProject = DefaultProject
	}
	if cfg.Rules == (classify.Rules{}) {
		cfg.Rules = classify.DefaultRules()
	}
	if cfg.Weights == (search.Weights{}) {
		cfg.Weights = search.DefaultWeights()
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create base dir: %w", err)
	}
	fs, err := storage.NewFS(baseDir)
	if err != nil {
		return nil, err
	}
	s := &Store{
		fs:             fs,
		codec:          frontmatter.New(cfg.Rules),
		engine:         search.New(cfg.Weights, cfg.Synonyms),
		defaultProject: cfg.DefaultProject,
		locks:          make(map[string]*sync.Mutex),
	}
	if _, err := s.projectDir(cfg.DefaultProject); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the absolute base directory of the store.
func (s *Store) Root() string {
	return s.fs.Root()
}

// lock returns the advisory mutex serializing mutations of id within this
// process. Writers in other processes still race last-writer-wins.
func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// AddParams carries caller-supplied fields for a new memory. Complexity and
// content metadata are always derived, never accepted.
type AddParams struct {
	Content  string
	Title    string // used only to slug the filename
	Category string
	Project  string
	Tags     []string
	Priority string
	Status   string
	Related  []string
}

// Add creates a new memory file and returns the stored memory.
func (s *Store) Add(_ context.Context, p AddParams) (*models.Memory, error) {
	var projectField, dir string
	if strings.TrimSpace(p.Project) != "" {
		d, err := s.projectDir(p.Project)
		if err != nil {
			return nil, err
		}
		projectField, dir = d, d
	} else {
		d, err := s.projectDir(s.defaultProject)
		if err != nil {
			return nil, err
		}
		dir = d
	}

	now := models.NowUTC()
	m := &models.Memory{
		ID:           models.NewID(),
		Content:      p.Content,
		Timestamp:    now,
		Category:     strings.TrimSpace(p.Category),
		Project:      projectField,
		Tags:         models.NormalizeStringSet(p.Tags),
		Priority:     models.NormalizePriority(p.Priority),
		Status:       models.NormalizeStatus(p.Status),
		Related:      models.NormalizeStringSet(p.Related),
		AccessCount:  0,
		LastAccessed: now,
	}

	name, err := s.newFilename(dir, p.Title, now)
	if err != nil {
		return nil, err
	}
	filePath := path.Join(dir, name)
	if err := s.fs.Write(filePath, s.codec.Generate(m)); err != nil {
		return nil, err
	}
	slog.Info("store: memory added",
		slog.String("id", m.ID),
		slog.String("project", dir),
		slog.String("file", name))
	return m, nil
}

// Get returns the memory with the given id, or nil when no such memory
// exists. A successful read bumps access_count and last_accessed in the
// backing file; a failed bump is logged and the memory is still returned.
func (s *Store) Get(ctx context.Context, id string) (*models.Memory, error) {
	rec := s.find(ctx, id)
	if rec == nil {
		return nil, nil
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	// Re-read under the lock so the touch applies to current bytes.
	data, err := s.fs.Read(rec.Path)
	if err != nil {
		return nil, nil
	}
	m, err := s.codec.Parse(data, frontmatter.Lenient)
	if err != nil || m.ID != id {
		return nil, nil
	}

	m.AccessCount++
	m.LastAccessed = models.NowUTC()
	if err := s.fs.Write(rec.Path, s.codec.Generate(m)); err != nil {
		slog.Warn("store: access touch failed",
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
	return m, nil
}

// UpdateParams carries the mutable fields of an update. Nil pointers leave
// the stored value unchanged; non-nil slices replace wholesale.
type UpdateParams struct {
	Content  *string
	Category *string
	Project  *string
	Tags     []string
	Priority *string
	Status   *string
	Related  []string
}

// Update applies p to the memory with the given id and rewrites its file.
// Returns nil when the id is unknown. Changing the project moves the file
// into the new partition; the timestamp always advances to now.
func (s *Store) Update(ctx context.Context, id string, p UpdateParams) (*models.Memory, error) {
	rec := s.find(ctx, id)
	if rec == nil {
		return nil, nil
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	data, err := s.fs.Read(rec.Path)
	if err != nil {
		return nil, nil
	}
	m, err := s.codec.Parse(data, frontmatter.Lenient)
	if err != nil || m.ID != id {
		return nil, nil
	}

	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.Category != nil {
		m.Category = strings.TrimSpace(*p.Category)
	}
	if p.Tags != nil {
		m.Tags = models.NormalizeStringSet(p.Tags)
	}
	if p.Priority != nil {
		m.Priority = models.NormalizePriority(*p.Priority)
	}
	if p.Status != nil {
		m.Status = models.NormalizeStatus(*p.Status)
	}
	if p.Related != nil {
		m.Related = models.NormalizeStringSet(p.Related)
	}

	newPath := rec.Path
	if p.Project != nil {
		target := strings.TrimSpace(*p.Project)
		if target == "" {
			// Clearing the project returns the memory to the default
			// partition and drops the field.
			dir, err := s.projectDir(s.defaultProject)
			if err != nil {
				return nil, err
			}
			m.Project = ""
			newPath = path.Join(dir, path.Base(rec.Path))
		} else {
			dir, err := s.projectDir(target)
			if err != nil {
				return nil, err
			}
			m.Project = dir
			newPath = path.Join(dir, path.Base(rec.Path))
		}
	}

	m.Timestamp = models.NowUTC()
	if err := s.fs.Write(newPath, s.codec.Generate(m)); err != nil {
		return nil, err
	}
	if newPath != rec.Path {
		if err := s.fs.Delete(rec.Path); err != nil {
			slog.Warn("store: stale file left after project move",
				slog.String("id", id),
				slog.String("path", rec.Path),
				slog.String("error", err.Error()))
		}
		slog.Info("store: memory moved",
			slog.String("id", id),
			slog.String("from", rec.Path),
			slog.String("to", newPath))
	}
	return m, nil
}

// Delete removes the memory with the given id. The bool reports whether a
// file was actually removed; deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	rec := s.find(ctx, id)
	if rec == nil {
		return false, nil
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := s.fs.Delete(rec.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	slog.Info("store: memory deleted", slog.String("id", id), slog.String("path", rec.Path))
	return true, nil
}

// find scans all partitions for the record whose memory has the given id.
// Per-file failures are skipped; an id inside a broken file is unreachable
// until the file is repaired.
func (s *Store) find(_ context.Context, id string) *Record {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	for rec := range s.scan(s.allDirs()) {
		if rec.Err != nil {
			continue
		}
		if rec.Memory.ID == id {
			return &rec
		}
	}
	return nil
}
