package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/repwise-data/repwise/internal/fsutil"
	"github.com/repwise-data/repwise/internal/security"
)

// FileStore caches assets as plain files under a base directory.
type FileStore struct {
	fs   fsutil.FileSystem
	base string
}

// NewFileStore creates a FileStore rooted at base. Pass fsutil.OSFileSystem{}
// for production or a MemoryFileSystem in tests.
func NewFileStore(filesystem fsutil.FileSystem, base string) *FileStore {
	return &FileStore{fs: filesystem, base: base}
}

func (s *FileStore) path(name string) (string, error) {
	if err := security.ValidateAssetName(name); err != nil {
		return "", fmt.Errorf("invalid asset name: %w", err)
	}
	return filepath.Join(s.base, name), nil
}

// Get returns the cached file contents for name.
func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return data, nil
}

// Put writes data to the asset file, creating the base directory if needed.
func (s *FileStore) Put(ctx context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.base, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	if err := s.fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write asset %s: %w", name, err)
	}
	return nil
}

// Has reports whether the asset file exists.
func (s *FileStore) Has(ctx context.Context, name string) (bool, error) {
	path, err := s.path(name)
	if err != nil {
		return false, err
	}
	return s.fs.Exists(path), nil
}
