package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestMemoryFileSystemReadWrite(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.WriteFile("assets/pose_detector.tflite", []byte("weights"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := m.ReadFile("assets/pose_detector.tflite")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "weights" {
		t.Errorf("ReadFile = %q, want %q", got, "weights")
	}

	// Mutating the returned slice must not affect stored data.
	got[0] = 'X'
	again, _ := m.ReadFile("assets/pose_detector.tflite")
	if string(again) != "weights" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestMemoryFileSystemMissingFile(t *testing.T) {
	m := NewMemoryFileSystem()

	_, err := m.ReadFile("absent.bin")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile error = %v, want fs.ErrNotExist", err)
	}
	if _, err := m.Stat("absent.bin"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat error = %v, want fs.ErrNotExist", err)
	}
	if err := m.Remove("absent.bin"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Remove error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemoryFileSystemMkdirAll(t *testing.T) {
	m := NewMemoryFileSystem()

	if err := m.MkdirAll("a/b/c", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	for _, dir := range []string{"a", "a/b", "a/b/c"} {
		if !m.Exists(dir) {
			t.Errorf("Exists(%q) = false after MkdirAll", dir)
		}
		info, err := m.Stat(dir)
		if err != nil {
			t.Fatalf("Stat(%q): %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(%q).IsDir() = false", dir)
		}
	}
}

func TestMemoryFileSystemRemove(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("f.bin", []byte("x"), 0o644)

	if err := m.Remove("f.bin"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists("f.bin") {
		t.Error("Exists = true after Remove")
	}
}

func TestMemoryFileSystemConcurrent(t *testing.T) {
	m := NewMemoryFileSystem()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.WriteFile("shared.bin", []byte("data"), 0o644)
				m.ReadFile("shared.bin")
				m.Exists("shared.bin")
			}
		}()
	}
	wg.Wait()
}

func TestOSFileSystem(t *testing.T) {
	var osFS OSFileSystem
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "model.bin")

	if err := osFS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := osFS.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !osFS.Exists(path) {
		t.Error("Exists = false after WriteFile")
	}

	got, err := osFS.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("ReadFile = %q", got)
	}

	info, err := osFS.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != int64(len("payload")) {
		t.Errorf("Size = %d, want %d", info.Size(), len("payload"))
	}

	if err := osFS.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("file still present after Remove: %v", err)
	}
}
