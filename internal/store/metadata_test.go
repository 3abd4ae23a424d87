package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestStore_SetGet(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get("ctx1", "raw_data@v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "data1" {
		t.Errorf("Get = %q, want %q", got, "data1")
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Get("nope", "nope@v1"); err != ErrNotFound {
		t.Errorf("Get on missing key: err = %v, want ErrNotFound", err)
	}
}

func TestStore_SetConflictReturnsErrIndexConflict(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	err := s.Set("ctx1", "raw_data", "raw_data@v1", "data2", "run2", nil)
	if err != ErrIndexConflict {
		t.Errorf("second Set with differing data: err = %v, want ErrIndexConflict", err)
	}
}

func TestStore_SetIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	if err := s.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run2", nil); err != nil {
		t.Errorf("repeating Set with the same data should not conflict: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete("raw_data@v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("ctx1", "raw_data@v1"); err != ErrNotFound {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
}

func TestStore_LatestRunID(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "a", "a@v1", "d1", "run1", nil); err != nil {
		t.Fatalf("Set run1: %v", err)
	}
	if err := s.Set("ctx2", "a", "a@v1", "d2", "run2", nil); err != nil {
		t.Fatalf("Set run2: %v", err)
	}

	latest, err := s.LatestRunID()
	if err != nil {
		t.Fatalf("LatestRunID: %v", err)
	}
	if latest != "run2" {
		t.Errorf("LatestRunID = %q, want %q (the most recently written run)", latest, "run2")
	}
}

func TestStore_LatestRunID_NoRuns(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LatestRunID(); err != ErrNoRuns {
		t.Errorf("LatestRunID on empty store: err = %v, want ErrNoRuns", err)
	}
}

func TestStore_GetRunMetadata(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "a", "a@v1", "d1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("ctx2", "b", "b@v1", "d2", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("ctx3", "c", "c@v1", "d3", "run2", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entries, err := s.GetRunMetadata("run1")
	if err != nil {
		t.Fatalf("GetRunMetadata: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetRunMetadata returned %d entries, want 2", len(entries))
	}
}

func TestStore_Reset(t *testing.T) {
	s := newTestStore(t)

	if err := s.Set("ctx1", "a", "a@v1", "d1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := s.Get("ctx1", "a@v1"); err != ErrNotFound {
		t.Errorf("Get after Reset: err = %v, want ErrNotFound", err)
	}
	if _, err := s.LatestRunID(); err != ErrNoRuns {
		t.Errorf("LatestRunID after Reset: err = %v, want ErrNoRuns", err)
	}
}

func TestMemoryMetadataStore_SetGet(t *testing.T) {
	m := NewMemoryMetadataStore()

	if err := m.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get("ctx1", "raw_data@v1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "data1" {
		t.Errorf("Get = %q, want %q", got, "data1")
	}
}

func TestMemoryMetadataStore_ConflictingSet(t *testing.T) {
	m := NewMemoryMetadataStore()

	if err := m.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set("ctx1", "raw_data", "raw_data@v1", "data2", "run2", nil); err != ErrIndexConflict {
		t.Errorf("Set: err = %v, want ErrIndexConflict", err)
	}
}

func TestMemoryMetadataStore_Reset(t *testing.T) {
	m := NewMemoryMetadataStore()
	if err := m.Set("ctx1", "raw_data", "raw_data@v1", "data1", "run1", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := m.Get("ctx1", "raw_data@v1"); err != ErrNotFound {
		t.Errorf("Get after Reset: err = %v, want ErrNotFound", err)
	}
}
