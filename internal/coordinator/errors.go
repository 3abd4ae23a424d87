package coordinator

import "errors"

// Sentinel errors surfaced by the Coordinator, per spec.md §7's error
// taxonomy. ResultRetrieval and Materialization errors from the result store
// are not returned to the host: a failed Get invalidates the metadata and
// recomputes the node, and a failed Set is logged. These three are specific
// to the Coordinator's orchestration layer.
var (
	// ErrMissingRun is returned when resume_from names an unknown run id,
	// or "latest" is requested against a store with no recorded history.
	ErrMissingRun = errors.New("coordinator: resume_from references an unknown run")

	// ErrResumeRequiresDurableStore is returned when resume_from is set but
	// the configured Metadata Store cannot answer run-history queries (the
	// in-memory implementation has no durable history to resume from).
	ErrResumeRequiresDurableStore = errors.New("coordinator: resume_from requires a durable metadata store")

	// ErrUnknownNode is returned when a hook is invoked for a node name not
	// present in the graph snapshotted at BeforeGraph.
	ErrUnknownNode = errors.New("coordinator: unknown node")
)
