package resultstore

import "errors"

// Sentinel errors mirroring the source's ShelveResultStore exception types.
var (
	// ErrNotFound is returned when a fingerprint has no recorded result.
	ErrNotFound = errors.New("resultstore: fingerprint not found")

	// ErrResultRetrieval wraps any failure reading a previously-saved
	// result back (inline blob corruption, or a side-channel file that has
	// since been moved or deleted), mirroring ResultRetrievalError.
	ErrResultRetrieval = errors.New("resultstore: failed to retrieve result")

	// ErrMaterialization wraps any failure writing a result for storage,
	// mirroring MaterializationError.
	ErrMaterialization = errors.New("resultstore: failed to materialize result")
)
