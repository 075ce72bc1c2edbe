// Package storage defines the store's file-system abstraction.
package storage

// FileMeta is a lightweight description of one stored file.
type FileMeta struct {
	Path string // relative to the store root
	Size int64
}

// Provider is the interface for store file operations. All paths are
// relative to the store root; implementations must reject anything that
// resolves outside it.
type Provider interface {
	// Root returns the absolute path of the store root.
	Root() string
	// ListDirs returns the names of the top-level directories.
	ListDirs() ([]string, error)
	// ListFiles returns metadata for every .md file directly inside dir.
	ListFiles(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// EnsureDir creates dir if it does not exist.
	EnsureDir(dir string) error
	// Exists reports whether a file exists at path.
	Exists(path string) bool
}
