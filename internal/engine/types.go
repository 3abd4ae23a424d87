// Package engine defines the contracts FlowCache consumes from the host
// dataflow engine: the graph/node shape, the lifecycle hook arguments, and
// the core Fingerprint data type shared by every other package in this
// module. Nothing in this package knows how to fingerprint a value, encode a
// context key, or persist anything — it is pure data and interfaces, the
// same role internal/pipeline/types.go plays for the request/response shapes
// it describes.
package engine

import "time"

// Fingerprint is the immutable triple that identifies one node's output for
// one run: which node produced it, which implementation produced it (code),
// and which value it produced (data). NodeName is carried for diagnostics
// and for reconstructing run metadata; it does not participate in store
// lookups, which are keyed by Code + a context key derived from Data values.
type Fingerprint struct {
	NodeName string
	Code     string
	Data     string
}

// InputCodeVersion returns the synthetic code version used for top-level
// graph inputs: their context keys must stay invariant across code changes,
// so they are keyed off the node name rather than any node.version.
func InputCodeVersion(nodeName string) string {
	return nodeName + "__input"
}

// Node is the minimal shape of a graph node the cache needs: a stable name,
// a code version string supplied by the host (opaque to the cache), a set of
// tags recognised per spec (cache=<format>, always_recompute, dont_fingerprint),
// and an opaque descriptor persisted alongside the node's metadata.
type Node interface {
	Name() string
	Version() string
	Tags() map[string]any
	Descriptor() any
}

// Graph is an iterable collection of Node. The host engine is expected to
// provide nodes in any order; the Coordinator does not depend on topological
// order, only on being invoked in topological order by the host for
// ToExecuteNode/AfterNode.
type Graph interface {
	Nodes() []Node
}

// RunHistoryEntry is one row of the append-only history index: a single
// metadata write, timestamped and associated with the run that produced it.
type RunHistoryEntry struct {
	ID         int64
	ContextKey string
	RunID      string
	CreatedAt  time.Time
}

// NodeDescriptor is the opaque, engine-supplied description of a node
// implementation, persisted once per code version. The cache never
// interprets its contents.
type NodeDescriptor struct {
	CodeVersion string
	Blob        []byte
}

// CacheMetadataRecord mirrors the cache_metadata table row: the durable
// record backing a context-key lookup.
type CacheMetadataRecord struct {
	ContextKey  string
	NodeName    string
	CodeVersion string
	DataVersion string
	CreatedAt   time.Time
}

// Recognized node tags (spec.md §6 "Host-recognized tags on nodes").
const (
	TagCache            = "cache"
	TagAlwaysRecompute  = "always_recompute"
	TagDontFingerprint  = "dont_fingerprint"
)

// SaverKwargs describes the side-channel persistence instructions derived
// from a node's cache=<format> tag.
type SaverKwargs struct {
	Format string
	Extra  map[string]any
}
