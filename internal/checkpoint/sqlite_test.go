package checkpoint

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStore_EmptyMeansNoCheckpoint(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cp.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close()

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("fresh database should have no checkpoint")
	}
}

func TestSQLiteStore_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := store.Save(1325412060); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(1325412120); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	store.Close()

	// Reopen to prove the value survived the handle.
	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	ts, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load failed: ok=%v err=%v", ok, err)
	}
	if ts != 1325412120 {
		t.Errorf("ts = %v, want 1325412120", ts)
	}
}
