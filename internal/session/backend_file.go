package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileBackend stores one file per key under a private directory.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created
// lazily on first write.
func NewFileBackend(dir string) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("session directory is required")
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the directory holding the session files.
func (f *FileBackend) Dir() string { return f.dir }

func (f *FileBackend) Load(key string) (string, error) {
	path, err := f.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

// Save writes value to a temp file and renames it over the key, so a reader
// never sees a half-written value.
func (f *FileBackend) Save(key, value string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", key, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (f *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("invalid session key %q", key)
	}
	return filepath.Join(f.dir, key), nil
}
