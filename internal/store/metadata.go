package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

// Set records that contextKey (for codeVersion/nodeName) produced
// dataVersion during runID. It is the durable half of spec.md's Metadata
// Store write path: a single transaction appends to history, registers the
// node's code version if unseen (persisting its opaque descriptor blob,
// spec.md §3 node_descriptor_blob), and upserts the context-key index.
//
// descriptor is the host-supplied engine.Node.Descriptor() value, opaque to
// the cache; it is JSON-encoded for storage and ignored (nil) for callers
// that have none. It is only ever written on the first sighting of
// codeVersion — nodes.descriptor, like nodes itself, is keyed by code
// version, not by individual Set call.
//
// If contextKey is already indexed under codeVersion to a different
// dataVersion, Set returns ErrIndexConflict (invariant I3) without writing
// anything — the source's MetadataStoreIndexingError.
func (s *Store) Set(contextKey, nodeName, codeVersion, dataVersion, runID string, descriptor any) error {
	tx, err := s.writer.Begin()
	if err != nil {
		return fmt.Errorf("store: set: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)

	var existing string
	err = tx.QueryRow(
		"SELECT data_version FROM cache_metadata WHERE context_key = ? AND code_version = ?",
		contextKey, codeVersion,
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != dataVersion {
			return ErrIndexConflict
		}
	case err == sql.ErrNoRows:
		// no existing record; proceed to insert below.
	default:
		return fmt.Errorf("store: set: check existing: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO history (context_key, run_id, created_at) VALUES (?, ?, ?)",
		contextKey, runID, now,
	); err != nil {
		return fmt.Errorf("store: set: insert history: %w", err)
	}

	var descriptorBlob []byte
	if descriptor != nil {
		var mErr error
		descriptorBlob, mErr = json.Marshal(descriptor)
		if mErr != nil {
			return fmt.Errorf("store: set: marshal descriptor: %w", mErr)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO nodes (code_version, node_name, descriptor, created_at) VALUES (?, ?, ?, ?)",
		codeVersion, nodeName, descriptorBlob, now,
	); err != nil {
		return fmt.Errorf("store: set: insert node: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR IGNORE INTO cache_metadata
			(context_key, node_name, code_version, data_version, created_at, hits, misses)
		VALUES (?, ?, ?, ?, ?, 0, 0)`,
		contextKey, nodeName, codeVersion, dataVersion, now,
	); err != nil {
		return fmt.Errorf("store: set: upsert cache_metadata: %w", err)
	}

	return tx.Commit()
}

// Get looks up the data fingerprint recorded for contextKey under
// codeVersion. A hit increments the row's hit counter; a miss returns
// ErrNotFound and leaves the (nonexistent) row untouched.
func (s *Store) Get(contextKey, codeVersion string) (string, error) {
	var dataVersion string
	err := s.reader.QueryRow(
		"SELECT data_version FROM cache_metadata WHERE context_key = ? AND code_version = ?",
		contextKey, codeVersion,
	).Scan(&dataVersion)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get: %w", err)
	}

	if _, err := s.writer.Exec(
		"UPDATE cache_metadata SET hits = hits + 1 WHERE context_key = ? AND code_version = ?",
		contextKey, codeVersion,
	); err != nil {
		return "", fmt.Errorf("store: get: increment hits: %w", err)
	}

	return dataVersion, nil
}

// RecordMiss increments the miss counter for a node's code version without
// needing a matching context key — used by the Coordinator when a lookup
// misses entirely, to keep per-node hit/miss statistics (a feature recovered
// from the source's richer counters, absent from the distilled spec).
func (s *Store) RecordMiss(nodeName, codeVersion string) error {
	_, err := s.writer.Exec(
		`UPDATE cache_metadata SET misses = misses + 1
		 WHERE code_version = ? AND node_name = ?`,
		codeVersion, nodeName,
	)
	if err != nil {
		return fmt.Errorf("store: record miss: %w", err)
	}
	return nil
}

// Delete removes every cache_metadata and nodes row for codeVersion. This is
// the primary mechanism for invalidating a node implementation: once deleted,
// no context key will resolve against that code version again.
func (s *Store) Delete(codeVersion string) error {
	tx, err := s.writer.Begin()
	if err != nil {
		return fmt.Errorf("store: delete: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM cache_metadata WHERE code_version = ?", codeVersion); err != nil {
		return fmt.Errorf("store: delete: cache_metadata: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM nodes WHERE code_version = ?", codeVersion); err != nil {
		return fmt.Errorf("store: delete: nodes: %w", err)
	}
	return tx.Commit()
}

// GetRunMetadata returns every history entry recorded for runID, in the
// order they were written.
func (s *Store) GetRunMetadata(runID string) ([]engine.RunHistoryEntry, error) {
	rows, err := s.reader.Query(
		"SELECT id, context_key, run_id, created_at FROM history WHERE run_id = ? ORDER BY id ASC",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: get run metadata: %w", err)
	}
	defer rows.Close()

	var entries []engine.RunHistoryEntry
	for rows.Next() {
		var e engine.RunHistoryEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.ContextKey, &e.RunID, &createdAt); err != nil {
			return nil, fmt.Errorf("store: get run metadata: scan: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("store: get run metadata: parse timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get run metadata: iterate: %w", err)
	}
	return entries, nil
}

// GetRunFingerprints reconstructs the {node_name -> Fingerprint} map a given
// run produced, by joining that run's history entries against the
// cache_metadata rows their context keys resolved to. This is what
// resume-from-run semantics (spec.md §4.5 step 5) pre-seed the Coordinator's
// in-memory fingerprint map from.
func (s *Store) GetRunFingerprints(runID string) ([]engine.Fingerprint, error) {
	rows, err := s.reader.Query(`
		SELECT DISTINCT cm.node_name, cm.code_version, cm.data_version
		FROM history h
		JOIN cache_metadata cm ON cm.context_key = h.context_key
		WHERE h.run_id = ?`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: get run fingerprints: %w", err)
	}
	defer rows.Close()

	var fps []engine.Fingerprint
	for rows.Next() {
		var fp engine.Fingerprint
		if err := rows.Scan(&fp.NodeName, &fp.Code, &fp.Data); err != nil {
			return nil, fmt.Errorf("store: get run fingerprints: scan: %w", err)
		}
		fps = append(fps, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get run fingerprints: iterate: %w", err)
	}
	return fps, nil
}

// LatestRunID returns the run_id of the most recently written history
// entry. The source's equivalent query ordered ascending by id and so
// always returned the *first* run ever recorded rather than the latest;
// this implementation orders descending, which is the behaviour "latest"
// actually requires.
func (s *Store) LatestRunID() (string, error) {
	var runID string
	err := s.reader.QueryRow("SELECT run_id FROM history ORDER BY id DESC LIMIT 1").Scan(&runID)
	if err == sql.ErrNoRows {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("store: latest run id: %w", err)
	}
	return runID, nil
}
