package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// FileStore keeps each key in its own file under a state directory. Writes
// go through a temp file plus rename, so each key is updated atomically on
// its own (there is no cross-key transaction, matching the store contract).
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ports.ErrKeyNotFound
		}
		return "", fmt.Errorf("file store: get %s: %w", key, err)
	}
	return string(data), nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("file store: set %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("file store: set %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ports.ErrKeyNotFound
		}
		return fmt.Errorf("file store: delete %s: %w", key, err)
	}
	return nil
}
