package resultstore

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/allaspectsdev/flowcache/internal/engine"
	"github.com/allaspectsdev/flowcache/internal/serializer"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS results (
    fingerprint TEXT PRIMARY KEY,
    format TEXT NOT NULL DEFAULT '',
    blob BLOB,
    side_channel_path TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore is the durable Result Store. It fronts a single-table SQLite
// database with an in-memory LRU (two-tier caching, the pattern the
// teacher's CacheMiddleware uses for its own durable-backed cache). Values
// saved without a format are stored inline as gob blobs; values tagged with
// a format registered in the serializer package go to a side-channel file
// under sideChannelDir. Set fails with ErrMaterialization for a format that
// is not registered.
type SQLiteStore struct {
	db            *sql.DB
	memory        *lru.Cache[string, any]
	sideChannelDir string
	serializers    *serializer.Registry
	mu             sync.Mutex
}

// NewSQLiteStore opens (creating if absent) a Result Store database at path,
// persisting side-channel files under sideChannelDir. maxMemoryEntries sizes
// the in-memory LRU front-tier; 0 selects a sensible default.
func NewSQLiteStore(path, sideChannelDir string, maxMemoryEntries int) (*SQLiteStore, error) {
	if maxMemoryEntries <= 0 {
		maxMemoryEntries = 1000
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("resultstore: create directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(sideChannelDir, 0o700); err != nil {
		return nil, fmt.Errorf("resultstore: create side-channel directory %s: %w", sideChannelDir, err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("resultstore: open: %w", err)
	}
	if _, err := db.Exec(resultsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("resultstore: create schema: %w", err)
	}

	memCache, err := lru.New[string, any](maxMemoryEntries)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("resultstore: creating LRU: %w", err)
	}

	return &SQLiteStore{
		db:             db,
		memory:         memCache,
		sideChannelDir: sideChannelDir,
		serializers:    serializer.Default,
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get implements ResultStore.
func (s *SQLiteStore) Get(fingerprint string) (any, error) {
	if v, ok := s.memory.Get(fingerprint); ok {
		return v, nil
	}

	var format string
	var blob []byte
	var sideChannelPath string
	err := s.db.QueryRow(
		"SELECT format, blob, side_channel_path FROM results WHERE fingerprint = ?",
		fingerprint,
	).Scan(&format, &blob, &sideChannelPath)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultRetrieval, err)
	}

	var value any
	if sideChannelPath != "" {
		loader, ok := s.serializers.Loader(format)
		if !ok {
			return nil, fmt.Errorf("%w: no loader registered for format %q", ErrResultRetrieval, format)
		}
		value, err = loader.Load(sideChannelPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResultRetrieval, err)
		}
	} else {
		if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: gob decode: %v", ErrResultRetrieval, err)
		}
	}

	s.memory.Add(fingerprint, value)
	return value, nil
}

// Set implements ResultStore.
func (s *SQLiteStore) Set(fingerprint string, value any, kwargs *engine.SaverKwargs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var format, sideChannelPath string
	var blob []byte

	if kwargs != nil && kwargs.Format != "" {
		saver, ok := s.serializers.Saver(kwargs.Format)
		if !ok {
			return fmt.Errorf("%w: %v", ErrMaterialization, serializer.ErrUnregisteredFormat(kwargs.Format))
		}
		path := s.sideChannelPath(fingerprint, kwargs.Format)
		if err := saver.Save(path, value); err != nil {
			return fmt.Errorf("%w: %v", ErrMaterialization, err)
		}
		format = kwargs.Format
		sideChannelPath = path
	} else {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
			return fmt.Errorf("%w: gob encode: %v", ErrMaterialization, err)
		}
		blob = buf.Bytes()
	}

	// Content-addressed: a repeat Set for the same fingerprint necessarily
	// carries the same value, so a conflict is a no-op (spec.md §4.3), not an
	// update.
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO results (fingerprint, format, blob, side_channel_path)
		VALUES (?, ?, ?, ?)`,
		fingerprint, format, blob, sideChannelPath,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMaterialization, err)
	}

	s.memory.Add(fingerprint, value)
	return nil
}

// Delete implements ResultStore.
func (s *SQLiteStore) Delete(fingerprint string) error {
	var sideChannelPath string
	err := s.db.QueryRow(
		"SELECT side_channel_path FROM results WHERE fingerprint = ?", fingerprint,
	).Scan(&sideChannelPath)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("resultstore: delete: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM results WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("resultstore: delete: %w", err)
	}
	s.memory.Remove(fingerprint)

	if sideChannelPath != "" {
		if err := os.Remove(sideChannelPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", sideChannelPath).Msg("resultstore: failed to remove side-channel file")
		}
	}
	return nil
}

// Reset removes every stored value, including side-channel files.
func (s *SQLiteStore) Reset() error {
	rows, err := s.db.Query("SELECT side_channel_path FROM results WHERE side_channel_path != ''")
	if err != nil {
		return fmt.Errorf("resultstore: reset: %w", err)
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return fmt.Errorf("resultstore: reset: scan: %w", err)
		}
		paths = append(paths, p)
	}
	rows.Close()

	if _, err := s.db.Exec("DELETE FROM results"); err != nil {
		return fmt.Errorf("resultstore: reset: %w", err)
	}
	s.memory.Purge()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", p).Msg("resultstore: failed to remove side-channel file during reset")
		}
	}
	return nil
}

func (s *SQLiteStore) sideChannelPath(fingerprint, format string) string {
	return filepath.Join(s.sideChannelDir, fingerprint+"."+format)
}
