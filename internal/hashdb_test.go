package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *HashStore {
	t.Helper()
	store, err := OpenHashStore(filepath.Join(t.TempDir(), "hashes.db"))
	if err != nil {
		t.Fatalf("OpenHashStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHashStore_InsertAndFind(t *testing.T) {
	store := openTestStore(t)

	if err := store.Insert("/lib/a.jpg", "hash-1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert("/lib/b.jpg", "hash-1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	paths, err := store.FindByHash("hash-1")
	if err != nil {
		t.Fatalf("FindByHash failed: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("Expected 2 paths, got %d", len(paths))
	}

	paths, err = store.FindByHash("missing")
	if err != nil {
		t.Fatalf("FindByHash failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Expected no paths, got %v", paths)
	}
}

func TestHashStore_DuplicatePathIgnored(t *testing.T) {
	store := openTestStore(t)

	if err := store.Insert("/lib/a.jpg", "hash-1"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// re-inserting the same path must not error or add a row
	if err := store.Insert("/lib/a.jpg", "hash-1"); err != nil {
		t.Fatalf("Repeated insert failed: %v", err)
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("Expected 1 record, got %d", len(recs))
	}
}

func TestHashStore_FindByPath(t *testing.T) {
	store := openTestStore(t)
	store.Insert("/lib/a.jpg", "hash-1")

	hash, ok, err := store.FindByPath("/lib/a.jpg")
	if err != nil {
		t.Fatalf("FindByPath failed: %v", err)
	}
	if !ok || hash != "hash-1" {
		t.Errorf("Expected hash-1, got %q (%v)", hash, ok)
	}

	_, ok, err = store.FindByPath("/lib/missing.jpg")
	if err != nil {
		t.Fatalf("FindByPath failed: %v", err)
	}
	if ok {
		t.Error("Expected missing path to report not found")
	}
}

func TestHashStore_Reconcile(t *testing.T) {
	store := openTestStore(t)
	dir := t.TempDir()

	kept := filepath.Join(dir, "kept.jpg")
	os.WriteFile(kept, []byte("x"), 0644)

	store.Insert(kept, "hash-1")
	store.Insert(filepath.Join(dir, "gone.jpg"), "hash-2")
	store.Insert(filepath.Join(dir, "gone2.jpg"), "hash-3")

	removed, err := store.Reconcile()
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removals, got %d", removed)
	}

	recs, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Path != kept {
		t.Errorf("Expected only %s to survive, got %v", kept, recs)
	}
}
