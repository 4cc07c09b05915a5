package assets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repwise-data/repwise/internal/fsutil"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(fsutil.NewMemoryFileSystem(), "assets")
	ctx := context.Background()

	ok, err := store.Has(ctx, "pose_detector.tflite")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "pose_detector.tflite", []byte("weights")))

	ok, err = store.Has(ctx, "pose_detector.tflite")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := store.Get(ctx, "pose_detector.tflite")
	require.NoError(t, err)
	assert.Equal(t, []byte("weights"), data)
}

func TestFileStoreMissIsNotFound(t *testing.T) {
	store := NewFileStore(fsutil.NewMemoryFileSystem(), "assets")

	_, err := store.Get(context.Background(), "absent.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	store := NewFileStore(fsutil.NewMemoryFileSystem(), "assets")
	ctx := context.Background()

	for _, name := range []string{"", "../etc/passwd", "sub/model.bin", `sub\model.bin`} {
		if _, err := store.Get(ctx, name); err == nil {
			t.Errorf("Get(%q) succeeded, want error", name)
		}
		if err := store.Put(ctx, name, []byte("x")); err == nil {
			t.Errorf("Put(%q) succeeded, want error", name)
		}
	}
}

func TestFileStoreOnDisk(t *testing.T) {
	store := NewFileStore(fsutil.OSFileSystem{}, t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "pose_landmarks.json", []byte("{}")))
	data, err := store.Get(ctx, "pose_landmarks.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), data)
}
