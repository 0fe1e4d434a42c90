package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const tempPattern = ".tmp-"

// FileStore persists blobs as files in a single directory. Save writes to a
// temporary file in the same directory, syncs it, then renames it over the
// final name. Rename within one directory is atomic on POSIX filesystems, so
// a crash mid-save leaves at worst a stale temp file, never a torn blob.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store rooted
// there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FileStore) Dir() string { return s.dir }

// Save atomically writes the blob under the given name.
func (s *FileStore) Save(name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+tempPattern+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp for %q: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %q: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: sync %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close %q: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: rename %q: %w", name, err)
	}
	return nil
}

// Load returns the blob bytes or ErrNotFound.
func (s *FileStore) Load(name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: read %q: %w", name, err)
	}
	return data, nil
}

// Delete removes the blob or returns ErrNotFound.
func (s *FileStore) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("storage: delete %q: %w", name, err)
	}
	return nil
}

// List returns the blob names present in the directory, skipping leftover
// temp files from interrupted saves.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.Contains(e.Name(), tempPattern) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// validateName rejects empty names and anything that would escape the store
// directory. Blob names are bare file names, never paths.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("storage: invalid blob name %q", name)
	}
	return nil
}
