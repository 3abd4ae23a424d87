// Package resultstore implements the Result Store (spec.md §4.3): a
// data-fingerprint -> value map. Values are stored inline as gob blobs by
// default; a node tagged cache=<format> is instead persisted through the
// matching github.com/allaspectsdev/flowcache/internal/serializer Saver/Loader
// to a side-channel file, with only the file's path kept inline — mirroring
// the source's ShelveResultStore and its SAVER_REGISTRY/LOADER_REGISTRY
// indirection.
package resultstore

import "github.com/allaspectsdev/flowcache/internal/engine"

// ResultStore is the interface the Coordinator depends on.
type ResultStore interface {
	// Get retrieves the value previously stored under fingerprint. It
	// returns ErrNotFound if nothing is stored, or ErrResultRetrieval if a
	// value is recorded but cannot be reconstructed (e.g. a missing
	// side-channel file).
	Get(fingerprint string) (any, error)

	// Set stores value under fingerprint. kwargs, if non-nil, requests
	// side-channel persistence in the given format instead of the default
	// inline encoding.
	Set(fingerprint string, value any, kwargs *engine.SaverKwargs) error

	// Delete removes any stored value for fingerprint. Deleting a
	// fingerprint that does not exist is not an error.
	Delete(fingerprint string) error

	// Reset removes every stored value.
	Reset() error
}
