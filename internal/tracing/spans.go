package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StartGraphSpan creates the root span for one BeforeGraph..AfterGraph run.
func StartGraphSpan(ctx context.Context, runID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "coordinator.graph",
		trace.WithAttributes(attribute.String("cache.run_id", runID)),
	)
}

// StartNodeSpan creates a child span for a single node's ToExecuteNode call.
func StartNodeSpan(ctx context.Context, nodeName, codeVersion string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "coordinator.node",
		trace.WithAttributes(
			attribute.String("cache.node_name", nodeName),
			attribute.String("cache.code_version", codeVersion),
		),
	)
}

// SetNodeOutcomeAttributes records the hit/miss/desync outcome of a node's
// cache lookup on the current span.
func SetNodeOutcomeAttributes(ctx context.Context, contextKey, fingerprint string, cacheHit, desync bool) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("cache.context_key", contextKey),
		attribute.String("cache.fingerprint", fingerprint),
		attribute.Bool("cache.hit", cacheHit),
		attribute.Bool("cache.desync", desync),
	)
}

// SetGraphOutcomeAttributes records aggregate hit/miss counts for the whole
// run on the current (graph-level) span.
func SetGraphOutcomeAttributes(ctx context.Context, nodeCount, hits, misses int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("cache.node_count", nodeCount),
		attribute.Int("cache.hits", hits),
		attribute.Int("cache.misses", misses),
	)
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
