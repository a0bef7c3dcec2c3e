package cache

import (
	"os"
	"path/filepath"
	"testing"
)

// setupStore opens a cache store in a temp directory.
func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "cache.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Errorf("Path() = %q, want %q", store.Path(), path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestStoreAndLookup(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	file := writeTempFile(t, dir, "main.go", "package main")

	key := Key{Hook: "go:vet", InputHash: "abc123"}

	hit, err := store.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if hit {
		t.Error("Lookup = hit before Store")
	}

	if err := store.Store(key, []string{file}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	hit, err = store.Lookup(key)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !hit {
		t.Error("Lookup = miss after Store")
	}

	// A different input hash for the same hook is a distinct entry.
	hit, _ = store.Lookup(Key{Hook: "go:vet", InputHash: "other"})
	if hit {
		t.Error("Lookup = hit for unknown input hash")
	}
}

func TestStore_MissingTrackedFile(t *testing.T) {
	store := setupStore(t)
	key := Key{Hook: "go:vet", InputHash: "abc"}

	if err := store.Store(key, []string{"/nonexistent/file.go"}); err == nil {
		t.Fatal("expected error storing entry for missing file")
	}
	if hit, _ := store.Lookup(key); hit {
		t.Error("partial entry survived a failed Store")
	}
}

func TestInvalidateFiles_ContentChanged(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	file := writeTempFile(t, dir, "main.go", "package main")
	key := Key{Hook: "go:vet", InputHash: "abc"}

	if err := store.Store(key, []string{file}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	writeTempFile(t, dir, "main.go", "package main // edited")
	if err := store.InvalidateFiles([]string{file}); err != nil {
		t.Fatalf("InvalidateFiles failed: %v", err)
	}

	if hit, _ := store.Lookup(key); hit {
		t.Error("entry survived invalidation after content change")
	}
}

func TestInvalidateFiles_IdenticalContentSurvives(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	file := writeTempFile(t, dir, "main.go", "package main")
	key := Key{Hook: "go:vet", InputHash: "abc"}

	if err := store.Store(key, []string{file}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Rewrite the same bytes: a revert must not cost a re-run.
	writeTempFile(t, dir, "main.go", "package main")
	if err := store.InvalidateFiles([]string{file}); err != nil {
		t.Fatalf("InvalidateFiles failed: %v", err)
	}

	if hit, _ := store.Lookup(key); !hit {
		t.Error("entry invalidated despite byte-identical content")
	}
}

func TestInvalidateFiles_MissingFile(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	file := writeTempFile(t, dir, "main.go", "package main")
	key := Key{Hook: "go:vet", InputHash: "abc"}

	if err := store.Store(key, []string{file}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	os.Remove(file)
	if err := store.InvalidateFiles([]string{file}); err != nil {
		t.Fatalf("InvalidateFiles failed: %v", err)
	}

	if hit, _ := store.Lookup(key); hit {
		t.Error("entry survived invalidation after file deletion")
	}
}

func TestInvalidateFiles_UntrackedPathIsNoop(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	file := writeTempFile(t, dir, "main.go", "package main")
	key := Key{Hook: "go:vet", InputHash: "abc"}

	if err := store.Store(key, []string{file}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.InvalidateFiles([]string{filepath.Join(dir, "other.go")}); err != nil {
		t.Fatalf("InvalidateFiles failed: %v", err)
	}
	if hit, _ := store.Lookup(key); !hit {
		t.Error("unrelated invalidation dropped the entry")
	}
}

func TestStatsAndClear(t *testing.T) {
	store := setupStore(t)
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.go", "package a")
	b := writeTempFile(t, dir, "b.go", "package b")

	if err := store.Store(Key{Hook: "go:vet", InputHash: "h1"}, []string{a, b}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store(Key{Hook: "go:lint", InputHash: "h2"}, []string{a}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TrackedFiles != 2 {
		t.Errorf("TrackedFiles = %d, want 2", stats.TrackedFiles)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, _ = store.Stats()
	if stats.Entries != 0 || stats.TrackedFiles != 0 {
		t.Errorf("Stats after Clear = %+v, want empty", stats)
	}
}
