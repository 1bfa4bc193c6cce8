// Package uploads persists the extracted text of every ingested document on
// disk, organized as root/{library}/{version}/{filename}. The saved copy is
// what lets an operator inspect exactly what was indexed.
package uploads

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/corpus/core"
)

// FileStore saves extracted document text under a root directory.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create uploads root: %w", err)
	}
	return &FileStore{
		root:   dir,
		logger: slog.Default().With("component", "uploads"),
	}, nil
}

// Save writes the extracted text, sanitizing the filename first. Returns
// the path the document was saved under. Re-saving overwrites.
func (fs *FileStore) Save(library, version, filename, content string) (string, error) {
	dir := filepath.Join(fs.root, pathSegment(library), pathSegment(version))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, core.SanitizeFilename(filename))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	fs.logger.Debug("saved upload", "path", path, "bytes", len(content))
	return path, nil
}

// Remove deletes every saved document of a library version. Removing a
// version that was never saved is not an error.
func (fs *FileStore) Remove(library, version string) error {
	dir := filepath.Join(fs.root, pathSegment(library), pathSegment(version))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove uploads: %w", err)
	}
	// Drop the library dir too once its last version is gone.
	libDir := filepath.Join(fs.root, pathSegment(library))
	if entries, err := os.ReadDir(libDir); err == nil && len(entries) == 0 {
		_ = os.Remove(libDir)
	}
	return nil
}

// RemoveLibrary deletes every saved document of a library.
func (fs *FileStore) RemoveLibrary(library string) error {
	if err := os.RemoveAll(filepath.Join(fs.root, pathSegment(library))); err != nil {
		return fmt.Errorf("remove library uploads: %w", err)
	}
	return nil
}

// pathSegment keeps user-supplied identifiers from escaping the root.
func pathSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	seg := b.String()
	if seg == "" || seg == "." || seg == ".." {
		return "_"
	}
	return seg
}
