package store

import (
	"context"
	"os"
	"path/filepath"
)

// FileBackend keeps the document in a flat JSON file, the default driver.
type FileBackend struct {
	path string
}

// NewFileBackend constructs the backend. The directory is created on the
// first save, not here.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the file, mapping absence to ErrNotFound.
func (f *FileBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save overwrites the file via a temp-file rename so a crash mid-write
// never leaves a truncated document.
func (f *FileBackend) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
