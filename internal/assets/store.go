// Package assets manages the model files the pose pipeline depends on.
// Assets are resolved cache-first: a local store is consulted before any
// network fetch, and fetched bytes are written back asynchronously so the
// next load is a cache hit.
package assets

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when the named asset is not cached.
var ErrNotFound = errors.New("asset not found")

// Store is a local cache backend for model assets.
type Store interface {
	// Get returns the cached bytes for name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put caches data under name, replacing any previous entry.
	Put(ctx context.Context, name string, data []byte) error

	// Has reports whether name is cached without reading its contents.
	Has(ctx context.Context, name string) (bool, error)
}
