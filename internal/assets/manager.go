package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/repwise-data/repwise/internal/monitoring"
)

// Source records where an asset's bytes came from.
type Source string

const (
	// SourceCache means the asset was served from the local store.
	SourceCache Source = "cache"
	// SourceNetwork means the asset was fetched from its origin.
	SourceNetwork Source = "network"
)

// Asset is a loaded model asset with its provenance.
type Asset struct {
	Name   string
	Data   []byte
	Source Source
}

// Manager resolves assets cache-first. Concurrent loads for the same name
// coalesce into a single in-flight resolution, resolved assets stay in
// memory for the process lifetime, and network fetches are written back to
// the store asynchronously.
type Manager struct {
	store   Store
	fetcher Fetcher

	mu       sync.Mutex
	inflight map[string]*loadCall
	resolved map[string][]byte

	writes sync.WaitGroup
}

type loadCall struct {
	done  chan struct{}
	asset *Asset
	err   error
}

// NewManager creates a Manager. fetcher may be nil for cache-only operation;
// a cache miss is then a terminal failure.
func NewManager(store Store, fetcher Fetcher) *Manager {
	return &Manager{
		store:    store,
		fetcher:  fetcher,
		inflight: make(map[string]*loadCall),
		resolved: make(map[string][]byte),
	}
}

// Load resolves the named asset. Callers racing on the same name share one
// resolution; repeated calls after success are served from memory, never
// refetched.
func (m *Manager) Load(ctx context.Context, name string) (*Asset, error) {
	m.mu.Lock()
	if data, ok := m.resolved[name]; ok {
		m.mu.Unlock()
		return &Asset{Name: name, Data: data, Source: SourceCache}, nil
	}
	if call, ok := m.inflight[name]; ok {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.asset, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &loadCall{done: make(chan struct{})}
	m.inflight[name] = call
	m.mu.Unlock()

	call.asset, call.err = m.resolve(ctx, name)
	close(call.done)

	m.mu.Lock()
	delete(m.inflight, name)
	if call.err == nil {
		m.resolved[name] = call.asset.Data
	}
	m.mu.Unlock()

	return call.asset, call.err
}

func (m *Manager) resolve(ctx context.Context, name string) (*Asset, error) {
	data, cacheErr := m.store.Get(ctx, name)
	if cacheErr == nil {
		return &Asset{Name: name, Data: data, Source: SourceCache}, nil
	}
	if !errors.Is(cacheErr, ErrNotFound) {
		monitoring.Logf("asset %s: cache read failed, falling through to fetch: %v", name, cacheErr)
	}

	if m.fetcher == nil {
		return nil, fmt.Errorf("asset %s: not cached and no fetcher configured: %w", name, cacheErr)
	}

	data, fetchErr := m.fetcher.Fetch(ctx, name)
	if fetchErr != nil {
		return nil, fmt.Errorf("asset %s: cache miss (%v) and fetch failed: %w", name, cacheErr, fetchErr)
	}

	m.writes.Add(1)
	go func() {
		defer m.writes.Done()
		// Write-back uses its own context so a cancelled load does not
		// abandon a successful fetch.
		if err := m.store.Put(context.Background(), name, data); err != nil {
			monitoring.Logf("asset %s: cache write-back failed: %v", name, err)
		}
	}()

	return &Asset{Name: name, Data: data, Source: SourceNetwork}, nil
}

// Preload resolves every named asset, stopping at the first failure.
func (m *Manager) Preload(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := m.Load(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// WaitWrites blocks until pending cache write-backs finish.
func (m *Manager) WaitWrites() {
	m.writes.Wait()
}
