package resultstore

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "results.db"), filepath.Join(dir, "side-channel"), 0)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

type fixtureValue struct {
	Name  string
	Count int
}

func TestSQLiteStore_InlineRoundTrip(t *testing.T) {
	gob.Register(fixtureValue{})
	s := newTestSQLiteStore(t)

	want := fixtureValue{Name: "n", Count: 7}
	if err := s.Set("fp1", want, nil); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get("fp1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.(fixtureValue) != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestSQLiteStore(t)
	if _, err := s.Get("nope"); err != ErrNotFound {
		t.Errorf("Get on missing fingerprint: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_SideChannelRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)

	want := map[string]any{"x": float64(1)}
	if err := s.Set("fp2", want, &engine.SaverKwargs{Format: "json"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get("fp2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	gotMap, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("Get returned %T, want map[string]any", got)
	}
	if gotMap["x"] != want["x"] {
		t.Errorf("Get = %v, want %v", gotMap, want)
	}
}

func TestSQLiteStore_DeleteRemovesSideChannelFile(t *testing.T) {
	s := newTestSQLiteStore(t)

	if err := s.Set("fp3", map[string]any{"a": "b"}, &engine.SaverKwargs{Format: "json"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete("fp3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("fp3"); err != ErrNotFound {
		t.Errorf("Get after Delete: err = %v, want ErrNotFound", err)
	}
	if _, err := os.Stat(s.sideChannelPath("fp3", "json")); !os.IsNotExist(err) {
		t.Errorf("side-channel file after Delete: stat err = %v, want not-exist", err)
	}
}

func TestSQLiteStore_Reset(t *testing.T) {
	gob.Register(fixtureValue{})
	s := newTestSQLiteStore(t)

	if err := s.Set("fp4", fixtureValue{Name: "a", Count: 1}, nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("fp5", map[string]any{"a": "b"}, &engine.SaverKwargs{Format: "json"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := s.Get("fp4"); err != ErrNotFound {
		t.Errorf("Get fp4 after Reset: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get("fp5"); err != ErrNotFound {
		t.Errorf("Get fp5 after Reset: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	m := NewMemoryStore()
	if err := m.Set("fp1", "value", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get("fp1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Errorf("Get = %v, want %q", got, "value")
	}
}

func TestMemoryStore_Reset(t *testing.T) {
	m := NewMemoryStore()
	if err := m.Set("fp1", "value", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := m.Get("fp1"); err != ErrNotFound {
		t.Errorf("Get after Reset: err = %v, want ErrNotFound", err)
	}
}
