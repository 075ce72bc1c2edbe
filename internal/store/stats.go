package store

import (
	"context"
	"fmt"
	"sort"
)

// ProjectStats is the per-partition slice of a Stats report.
type ProjectStats struct {
	Project string `json:"project"`
	Count   int    `json:"count"`
}

// Stats summarizes the store: how many memories, how many bytes, and how
// they spread across projects.
type Stats struct {
	TotalMemories int            `json:"total_memories"`
	TotalBytes    int64          `json:"total_bytes"`
	Projects      []ProjectStats `json:"projects"`
}

// Stats counts stored files per partition. Counts come from directory
// metadata alone; no file is opened.
func (s *Store) Stats(_ context.Context) (*Stats, error) {
	dirs, err := s.fs.ListDirs()
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	out := &Stats{}
	for _, dir := range dirs {
		files, err := s.fs.ListFiles(dir)
		if err != nil {
			continue
		}
		ps := ProjectStats{Project: dir, Count: len(files)}
		for _, f := range files {
			out.TotalBytes += f.Size
		}
		out.TotalMemories += ps.Count
		out.Projects = append(out.Projects, ps)
	}
	sort.Slice(out.Projects, func(i, j int) bool {
		if out.Projects[i].Count != out.Projects[j].Count {
			return out.Projects[i].Count > out.Projects[j].Count
		}
		return out.Projects[i].Project < out.Projects[j].Project
	})
	return out, nil
}
