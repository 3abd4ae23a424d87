package coordinator

import (
	"context"

	"github.com/allaspectsdev/flowcache/internal/engine"
	"github.com/allaspectsdev/flowcache/internal/tracing"
)

// Traced wraps a Coordinator with OpenTelemetry spans around each lifecycle
// hook. The underlying hook signatures are unchanged (the host engine's
// calling convention carries no context.Context), so Traced takes its own
// context per call purely for span parenting and is optional: a host that
// never constructs one pays nothing for tracing.
type Traced struct {
	*Coordinator
	ctx context.Context
}

// NewTraced wraps c so its hooks run inside spans rooted at ctx.
func NewTraced(ctx context.Context, c *Coordinator) *Traced {
	return &Traced{Coordinator: c, ctx: ctx}
}

// BeforeGraph runs the wrapped Coordinator's BeforeGraph inside a new graph
// span, retaining that span's context for the rest of the run.
func (t *Traced) BeforeGraph(runID string, graph engine.Graph, inputs, overrides map[string]any) error {
	ctx, span := tracing.StartGraphSpan(t.ctx, runID)
	defer span.End()
	t.ctx = ctx

	if err := t.Coordinator.BeforeGraph(runID, graph, inputs, overrides); err != nil {
		tracing.RecordError(ctx, err)
		return err
	}
	return nil
}

// ToExecuteNode runs the wrapped Coordinator's ToExecuteNode inside a node
// span covering the lookup-or-recompute decision.
func (t *Traced) ToExecuteNode(name string, callable NodeCallable, kwargs map[string]any) (any, error) {
	codeVersion := t.Coordinator.codeVersions[name]
	ctx, span := tracing.StartNodeSpan(t.ctx, name, codeVersion)
	defer span.End()

	value, err := t.Coordinator.ToExecuteNode(name, callable, kwargs)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return value, nil
}

// AfterNode runs the wrapped Coordinator's AfterNode and annotates the
// node's span with the fingerprint it resolved to — the earliest point in
// the hook sequence that outcome is known.
func (t *Traced) AfterNode(name string, kwargs map[string]any, result any) error {
	if err := t.Coordinator.AfterNode(name, kwargs, result); err != nil {
		tracing.RecordError(t.ctx, err)
		return err
	}
	fp := t.Coordinator.fingerprints[name]
	tracing.SetNodeOutcomeAttributes(t.ctx, "", fp.Data, false, false)
	return nil
}

// AfterGraph runs the wrapped Coordinator's AfterGraph and annotates the
// graph span with the final fingerprint count before it ends.
func (t *Traced) AfterGraph() error {
	tracing.SetGraphOutcomeAttributes(t.ctx, len(t.Coordinator.fingerprints), 0, 0)
	if err := t.Coordinator.AfterGraph(); err != nil {
		tracing.RecordError(t.ctx, err)
		return err
	}
	return nil
}
