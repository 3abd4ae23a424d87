package store

import "errors"

// Sentinel errors returned by both the durable (SQLite) and in-memory
// Metadata Store implementations, mirroring the source's dedicated
// MetadataStoreIndexingError exception type. Result-retrieval errors belong
// to the resultstore package, not to this one.
var (
	// ErrNotFound is returned when a context key has no recorded metadata.
	ErrNotFound = errors.New("store: context key not found")

	// ErrIndexConflict is returned by Set when a context key already maps
	// to a different data fingerprint than the one being written — the
	// Metadata Store's one safety invariant (spec.md invariant I3).
	ErrIndexConflict = errors.New("store: context key already indexed to a different fingerprint")

	// ErrNoRuns is returned when no run history exists yet, so there is no
	// "latest run" to resume from.
	ErrNoRuns = errors.New("store: no recorded runs")
)
