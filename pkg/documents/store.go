package documents

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists rendered documents under a root directory on local disk.
type Store struct {
	root string
}

// NewStore creates a document store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save writes the document at the storage-relative path, creating parent
// directories as needed, and replaces any existing file.
func (s *Store) Save(path string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Delete removes a stored document. Missing files are not an error.
func (s *Store) Delete(path string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Open returns the bytes of a stored document.
func (s *Store) Open(path string) ([]byte, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}
