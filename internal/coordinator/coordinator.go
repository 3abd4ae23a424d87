// Package coordinator implements the Cache Coordinator (spec.md §4.5): the
// three lifecycle hooks a host dataflow engine invokes around graph and
// node execution, orchestrating lookups against the Metadata and Result
// Stores, cache misses, writes, and cross-run resume.
package coordinator

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/allaspectsdev/flowcache/internal/cachekey"
	"github.com/allaspectsdev/flowcache/internal/engine"
	"github.com/allaspectsdev/flowcache/internal/fingerprint"
	"github.com/allaspectsdev/flowcache/internal/resultstore"
	"github.com/allaspectsdev/flowcache/internal/store"
)

// NodeCallable is the host-supplied node implementation, invoked in place of
// direct execution by ToExecuteNode on a cache miss.
type NodeCallable func(kwargs map[string]any) (any, error)

// DiagnosticSink receives a copy of every run's final fingerprint map, for
// the developer-facing diagnostic dump described in spec.md §6. It is
// optional; a Coordinator with no sink configured simply skips the call.
type DiagnosticSink interface {
	Record(runID string, fingerprints map[string]engine.Fingerprint) error
}

// runHistoryStore is implemented by Metadata Store backends that retain
// durable run history. Resume-from-run semantics require it; the in-memory
// store does not implement it, so resume against an in-memory store fails
// with ErrResumeRequiresDurableStore rather than silently no-op'ing.
type runHistoryStore interface {
	LatestRunID() (string, error)
	GetRunFingerprints(runID string) ([]engine.Fingerprint, error)
}

// Coordinator is the cache's single point of contact with the host engine.
// It is not safe for concurrent use from multiple goroutines: spec.md §5
// mandates single-writer, single-run operation, and the Coordinator
// performs no internal synchronization.
type Coordinator struct {
	metadata store.MetadataStore
	results  resultstore.ResultStore
	sink     DiagnosticSink
	resumeFrom string

	runID        string
	codeVersions map[string]string
	descriptors  map[string]any
	tags         map[string]parsedTags
	fingerprints map[string]engine.Fingerprint
}

// Option configures a Coordinator at construction time.
type Option func(*Coordinator)

// WithResumeFrom configures the Coordinator to pre-seed its fingerprint map
// from a prior run before BeforeGraph runs nodes for the first time.
// runID may be a literal run id or the sentinel "latest".
func WithResumeFrom(runID string) Option {
	return func(c *Coordinator) { c.resumeFrom = runID }
}

// WithDiagnosticSink attaches a diagnostic dump destination.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

// New constructs a Coordinator over the given Metadata and Result Stores.
func New(metadata store.MetadataStore, results resultstore.ResultStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		metadata:     metadata,
		results:      results,
		codeVersions: make(map[string]string),
		descriptors:  make(map[string]any),
		tags:         make(map[string]parsedTags),
		fingerprints: make(map[string]engine.Fingerprint),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BeforeGraph implements spec.md §4.5's before_graph hook.
func (c *Coordinator) BeforeGraph(runID string, graph engine.Graph, inputs, overrides map[string]any) error {
	c.runID = runID
	c.codeVersions = make(map[string]string)
	c.descriptors = make(map[string]any)
	c.tags = make(map[string]parsedTags)
	c.fingerprints = make(map[string]engine.Fingerprint)

	for _, n := range graph.Nodes() {
		c.codeVersions[n.Name()] = n.Version()
		c.descriptors[n.Version()] = n.Descriptor()
		c.tags[n.Name()] = parseTags(n.Tags())
	}

	if c.resumeFrom != "" {
		if err := c.seedFromResume(); err != nil {
			return err
		}
	}

	for name, value := range inputs {
		data := fingerprint.Hash(value)
		c.fingerprints[name] = engine.Fingerprint{
			NodeName: name,
			Code:     engine.InputCodeVersion(name),
			Data:     data,
		}
	}

	// Overrides are fingerprinted so downstream context keys are stable, but
	// intentionally not written to metadata — the node did not execute.
	for name, value := range overrides {
		data := fingerprint.Hash(value)
		c.fingerprints[name] = engine.Fingerprint{
			NodeName: name,
			Code:     c.codeVersions[name],
			Data:     data,
		}
	}

	return nil
}

func (c *Coordinator) seedFromResume() error {
	rh, ok := c.metadata.(runHistoryStore)
	if !ok {
		return ErrResumeRequiresDurableStore
	}

	resolved := c.resumeFrom
	if resolved == "latest" {
		latest, err := rh.LatestRunID()
		if err != nil {
			if errors.Is(err, store.ErrNoRuns) {
				return fmt.Errorf("%w: no runs recorded yet", ErrMissingRun)
			}
			return fmt.Errorf("coordinator: resolve resume_from=latest: %w", err)
		}
		resolved = latest
	}

	fps, err := rh.GetRunFingerprints(resolved)
	if err != nil {
		return fmt.Errorf("coordinator: resume from run %q: %w", resolved, err)
	}
	if len(fps) == 0 {
		return fmt.Errorf("%w: run %q", ErrMissingRun, resolved)
	}

	for _, fp := range fps {
		c.fingerprints[fp.NodeName] = fp
	}
	log.Info().Str("run_id", resolved).Int("nodes", len(fps)).Msg("coordinator: resumed fingerprints from prior run")
	return nil
}

// ToExecuteNode implements spec.md §4.5's to_execute_node hook: it is called
// in place of direct node execution and returns the value the host should
// treat as that node's output, whether served from cache or freshly
// computed.
func (c *Coordinator) ToExecuteNode(name string, callable NodeCallable, kwargs map[string]any) (any, error) {
	codeVersion, ok := c.codeVersions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	tags := c.tags[name]

	if tags.alwaysRecompute {
		return callable(kwargs)
	}

	if fp, ok := c.fingerprints[name]; ok {
		// Already resolved via inputs, overrides, or resume-from.
		value, err := c.results.Get(fp.Data)
		if err == nil {
			return value, nil
		}
		log.Error().Err(err).Str("node", name).Str("code_version", codeVersion).
			Msg("coordinator: result retrieval failed for pre-seeded fingerprint; invalidating and recomputing")
		if delErr := c.metadata.Delete(codeVersion); delErr != nil {
			return nil, fmt.Errorf("coordinator: recover from desync for %s: %w", name, delErr)
		}
		return callable(kwargs)
	}

	contextKey, err := c.contextKey(codeVersion, kwargs)
	if err != nil {
		return nil, err
	}

	dataVersion, err := c.metadata.Get(contextKey, codeVersion)
	if errors.Is(err, store.ErrNotFound) {
		if mr, ok := c.metadata.(interface {
			RecordMiss(nodeName, codeVersion string) error
		}); ok {
			if err := mr.RecordMiss(name, codeVersion); err != nil {
				log.Warn().Err(err).Str("node", name).Msg("coordinator: failed to record cache miss")
			}
		}
		return callable(kwargs)
	}
	if err != nil {
		return nil, fmt.Errorf("coordinator: metadata lookup for %s: %w", name, err)
	}

	value, err := c.results.Get(dataVersion)
	if err == nil {
		return value, nil
	}

	// Desync (invariant I4 violation): metadata names a fingerprint the
	// result store cannot produce. Self-heal by dropping the stale metadata
	// and recomputing; after_node will repopulate both stores.
	log.Error().Err(err).Str("node", name).Str("code_version", codeVersion).
		Msg("coordinator: metadata/result desync detected; invalidating and recomputing")
	if delErr := c.metadata.Delete(codeVersion); delErr != nil {
		return nil, fmt.Errorf("coordinator: recover from desync for %s: %w", name, delErr)
	}
	return callable(kwargs)
}

// AfterNode implements spec.md §4.5's after_node hook: it always runs after
// a node produces a value (whether from cache or fresh execution) and records
// that node's fingerprint in the in-memory fingerprint map (BeforeGraph has
// already filled it for inputs, overrides and resumed nodes).
func (c *Coordinator) AfterNode(name string, kwargs map[string]any, result any) error {
	codeVersion, ok := c.codeVersions[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	tags := c.tags[name]

	if tags.dontFingerprint {
		if existing, ok := c.fingerprints[name]; ok {
			c.fingerprints[name] = existing
			return nil
		}
	}

	contextKey, err := c.contextKey(codeVersion, kwargs)
	if err != nil {
		return err
	}

	if dataVersion, err := c.metadata.Get(contextKey, codeVersion); err == nil {
		// Already cached (this run re-derived the same context key it had
		// already resolved, e.g. via ToExecuteNode's hit path): reuse, do
		// not rewrite the result store.
		c.fingerprints[name] = engine.Fingerprint{NodeName: name, Code: codeVersion, Data: dataVersion}
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("coordinator: after_node metadata lookup for %s: %w", name, err)
	}

	data := fingerprint.Hash(result)
	fp := engine.Fingerprint{NodeName: name, Code: codeVersion, Data: data}

	if err := c.results.Set(data, result, tags.saver); err != nil {
		// Materialization failure: the result is lost from the cache, but
		// execution continues — the cache's own faults never mask a
		// successful node execution.
		log.Error().Err(err).Str("node", name).Msg("coordinator: failed to materialize result")
	}

	if err := c.metadata.Set(contextKey, name, codeVersion, data, c.runID, c.descriptors[codeVersion]); err != nil {
		return fmt.Errorf("coordinator: after_node metadata write for %s: %w", name, err)
	}

	c.fingerprints[name] = fp
	return nil
}

// AfterGraph implements spec.md §4.5's after_graph hook: if a diagnostic sink
// is configured, it records this run's fingerprints there. It does not close
// the metadata or result store; whoever opened them closes them.
func (c *Coordinator) AfterGraph() error {
	if c.sink != nil {
		if err := c.sink.Record(c.runID, c.fingerprints); err != nil {
			log.Warn().Err(err).Str("run_id", c.runID).Msg("coordinator: diagnostic sink failed")
		}
	}
	return nil
}

// contextKey builds the context key for name from the current fingerprints
// of kwargs' keys (the node's dependency names).
func (c *Coordinator) contextKey(codeVersion string, kwargs map[string]any) (string, error) {
	deps := make([]engine.Fingerprint, 0, len(kwargs))
	for depName := range kwargs {
		fp, ok := c.fingerprints[depName]
		if !ok {
			return "", fmt.Errorf("coordinator: dependency %q has no recorded fingerprint (host must evaluate nodes in topological order)", depName)
		}
		deps = append(deps, fp)
	}
	return cachekey.Encode(codeVersion, deps), nil
}
