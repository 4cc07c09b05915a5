package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
	gets int
	puts int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.fail {
		return nil, errors.New("store offline")
	}
	d, ok := s.data[name]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *mapStore) Put(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.fail {
		return errors.New("store offline")
	}
	s.data[name] = data
	return nil
}

func (s *mapStore) Has(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[name]
	return ok, nil
}

type fakeFetcher struct {
	calls   atomic.Int64
	err     error
	release chan struct{} // when non-nil, Fetch blocks until closed
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("bytes:" + name), nil
}

func TestLoadFromCache(t *testing.T) {
	store := newMapStore()
	store.data["pose_detector.tflite"] = []byte("cached")
	fetcher := &fakeFetcher{}
	m := NewManager(store, fetcher)

	asset, err := m.Load(context.Background(), "pose_detector.tflite")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, asset.Source)
	assert.Equal(t, []byte("cached"), asset.Data)
	assert.Equal(t, int64(0), fetcher.calls.Load(), "cache hit must not fetch")
}

func TestLoadFetchesOnMissAndWritesBack(t *testing.T) {
	store := newMapStore()
	m := NewManager(store, &fakeFetcher{})

	asset, err := m.Load(context.Background(), "pose_landmarks.json")
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, asset.Source)
	assert.Equal(t, []byte("bytes:pose_landmarks.json"), asset.Data)

	m.WaitWrites()
	ok, err := store.Has(context.Background(), "pose_landmarks.json")
	require.NoError(t, err)
	assert.True(t, ok, "fetched asset should be written back to the store")

	// Second load is a cache hit.
	again, err := m.Load(context.Background(), "pose_landmarks.json")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, again.Source)
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	store := newMapStore()
	fetcher := &fakeFetcher{release: make(chan struct{})}
	m := NewManager(store, fetcher)

	const n = 10
	var wg sync.WaitGroup
	results := make([]*Asset, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Load(context.Background(), "pose_detector.tflite")
		}(i)
	}

	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, int64(1), fetcher.calls.Load(), "racing loads must share one fetch")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].Data, results[i].Data)
	}
}

func TestLoadFailsWithoutFetcher(t *testing.T) {
	m := NewManager(newMapStore(), nil)

	_, err := m.Load(context.Background(), "pose_detector.tflite")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFailureIsDescriptive(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("origin returned 503")}
	m := NewManager(newMapStore(), fetcher)

	_, err := m.Load(context.Background(), "pose_detector.tflite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pose_detector.tflite")
	assert.Contains(t, err.Error(), "origin returned 503")
}

func TestPreloadStopsOnFirstFailure(t *testing.T) {
	store := newMapStore()
	store.data["a.bin"] = []byte("a")
	m := NewManager(store, nil)

	err := m.Preload(context.Background(), []string{"a.bin", "missing.bin", "also-missing.bin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.bin")
}

func TestLoadIdempotent(t *testing.T) {
	store := newMapStore()
	fetcher := &fakeFetcher{}
	m := NewManager(store, fetcher)

	for i := 0; i < 5; i++ {
		asset, err := m.Load(context.Background(), fmt.Sprintf("asset-%d", i%2))
		require.NoError(t, err)
		require.NotNil(t, asset)
	}
	assert.Equal(t, int64(2), fetcher.calls.Load())
}

// dropStore discards every write, so nothing ever lands in the backing
// store and only the in-memory memo can satisfy a repeat load.
type dropStore struct{ puts atomic.Int64 }

func (s *dropStore) Get(ctx context.Context, name string) ([]byte, error) { return nil, ErrNotFound }

func (s *dropStore) Put(ctx context.Context, name string, data []byte) error {
	s.puts.Add(1)
	return nil
}

func (s *dropStore) Has(ctx context.Context, name string) (bool, error) { return false, nil }

func TestSequentialLoadsNeverRefetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	m := NewManager(&dropStore{}, fetcher)

	first, err := m.Load(context.Background(), "pose_detector.tflite")
	require.NoError(t, err)
	assert.Equal(t, SourceNetwork, first.Source)

	// The write-back may still be in flight (or lost entirely); the second
	// load must be served from memory, not fetched again.
	second, err := m.Load(context.Background(), "pose_detector.tflite")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int64(1), fetcher.calls.Load(), "sequential loads must perform exactly one fetch")
}
