package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Slot is a single named persistence slot holding the serialized record
// set. It is read once at startup and overwritten whole on every
// mutation. This allows swapping the file backend for Postgres or other
// backends.
type Slot interface {
	// Load returns the slot contents. ok is false when the slot has
	// never been written, which is not an error.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save overwrites the slot with data.
	Save(ctx context.Context, data []byte) error
	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error
}

// FileSlot persists the slot as a single file on the local filesystem.
type FileSlot struct {
	path string
}

// NewFileSlot creates a file-backed slot at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// EnsureDir creates the slot's parent directory if it doesn't exist.
func (fs *FileSlot) EnsureDir() error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create slot directory %s: %w", dir, err)
	}
	return nil
}

func (fs *FileSlot) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read slot %s: %w", fs.path, err)
	}
	return data, true, nil
}

// Save writes to a temp file in the same directory and renames it into
// place, so a crash mid-write never leaves a truncated slot behind.
func (fs *FileSlot) Save(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".vault-*")
	if err != nil {
		return fmt.Errorf("failed to create temp slot file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp slot file: %w", err)
	}

	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace slot %s: %w", fs.path, err)
	}
	return nil
}

func (fs *FileSlot) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(fs.path)); err != nil {
		return fmt.Errorf("slot directory not accessible: %w", err)
	}
	return nil
}
