// Package watch mirrors file changes under the store root onto a callback.
// It is how external edits (editors, git checkouts, other processes)
// surface as live events without any polling by clients.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after each observed store change.
// kind is one of "created", "updated", "deleted"; path is relative to the
// store root.
type EventCallback func(kind string, path string)

// Run starts an fsnotify watcher on the store root and processes file
// change events until ctx is cancelled.
//
// A checksum cache does two jobs: it suppresses duplicate events for
// writes that did not change content (editors often fire several), and it
// distinguishes "created" from "updated" when an atomic rename lands on an
// existing file. New partition directories created at runtime are added to
// the watch list automatically.
func Run(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	sums := seedChecksums(root)
	logger.Info("watcher: started",
		slog.String("root", root),
		slog.Int("known_files", len(sums)))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories become watched partitions; files already
			// inside them are announced as created.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					announceDir(root, absPath, sums, logger, cb)
					continue
				}
			}

			// Only memory files from here on.
			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			// Files directly in the root are not memories; partitions are
			// one level down.
			if !strings.Contains(rel, string(os.PathSeparator)) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := os.ReadFile(absPath)
				if readErr != nil {
					logger.Warn("watcher: read failed",
						slog.String("path", rel),
						slog.String("error", readErr.Error()))
					continue
				}
				sum := checksum(data)
				prev, known := sums[rel]
				if known && prev == sum {
					// Content unchanged; editor double-fire.
					continue
				}
				sums[rel] = sum
				kind := "updated"
				if !known {
					kind = "created"
				}
				logger.Debug("watcher: change",
					slog.String("path", rel),
					slog.String("op", kind))
				if cb != nil {
					cb(kind, rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the old path only; if the new
				// path is inside a watched dir it arrives as Create.
				if _, known := sums[rel]; !known {
					continue
				}
				delete(sums, rel)
				logger.Debug("watcher: removed", slog.String("path", rel))
				if cb != nil {
					cb("deleted", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// announceDir reports .md files already present in a newly watched
// directory as created.
func announceDir(root, dirPath string, sums map[string]string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		if _, known := sums[rel]; known {
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil
		}
		sums[rel] = checksum(data)
		logger.Debug("watcher: found in new dir", slog.String("path", rel))
		if cb != nil {
			cb("created", rel)
		}
		return nil
	})
}

// seedChecksums records the content hash of every .md file present at
// startup, so pre-existing files produce "updated" rather than "created"
// on their first change.
func seedChecksums(root string) map[string]string {
	sums := make(map[string]string)
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return nil
		}
		sums[rel] = checksum(data)
		return nil
	})
	return sums
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
