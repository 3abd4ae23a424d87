package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allaspectsdev/flowcache/internal/config"
	"github.com/allaspectsdev/flowcache/internal/resultstore"
	"github.com/allaspectsdev/flowcache/internal/store"
)

// NewTestStore creates a durable Metadata Store backed by a SQLite file
// under a fresh temp directory. The store is automatically closed when the
// test completes.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "metadata.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// NewTestResultStore creates a durable Result Store backed by a SQLite file
// and side-channel directory under a fresh temp directory.
func NewTestResultStore(t *testing.T) *resultstore.SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	rs, err := resultstore.NewSQLiteStore(
		filepath.Join(dir, "results.db"),
		filepath.Join(dir, "blobs"),
		64,
	)
	if err != nil {
		t.Fatalf("failed to create test result store: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return rs
}

// NewTestConfig returns a minimal valid config for testing, rooted at a
// fresh temp directory.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.DataDir = t.TempDir()
	return cfg
}

// TempDir creates a temporary directory for test data.
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content to a file in the given directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}
