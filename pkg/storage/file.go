// Package storage writes encoded streams, payloads and config files to disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage reads and writes a single file. Save replaces the file
// atomically, so a reader never sees a half-written encoded stream.
type FileStorage struct {
	filepath string
	perm     os.FileMode
}

func NewFileStorage(filepath string, perm os.FileMode) *FileStorage {
	return &FileStorage{
		filepath: filepath,
		perm:     perm,
	}
}

func (s *FileStorage) Path() string {
	return s.filepath
}

func (s *FileStorage) Save(data []byte) error {
	dir := filepath.Dir(s.filepath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.filepath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.filepath); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}

func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *FileStorage) Exists() bool {
	_, err := os.Stat(s.filepath)
	return err == nil
}

func (s *FileStorage) Delete() error {
	if !s.Exists() {
		return nil
	}
	return os.Remove(s.filepath)
}
