package coordinator

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

func withInMemoryTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter), sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		tp.Shutdown(context.Background())
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
	})
	return exporter
}

func TestTraced_EmitsGraphAndNodeSpans(t *testing.T) {
	exporter := withInMemoryTracer(t)
	meta, results := newTestStores(t)

	c := New(meta, results)
	tc := NewTraced(context.Background(), c)

	graph := fakeGraph{nodes: []engine.Node{fakeNode{name: "A", version: "A@v1"}}}
	if err := tc.BeforeGraph("run1", graph, nil, nil); err != nil {
		t.Fatalf("BeforeGraph: %v", err)
	}

	val, err := tc.ToExecuteNode("A", func(map[string]any) (any, error) { return 1, nil }, nil)
	if err != nil {
		t.Fatalf("ToExecuteNode: %v", err)
	}
	if err := tc.AfterNode("A", nil, val); err != nil {
		t.Fatalf("AfterNode: %v", err)
	}
	if err := tc.AfterGraph(); err != nil {
		t.Fatalf("AfterGraph: %v", err)
	}

	spans := exporter.GetSpans()
	names := map[string]bool{}
	for _, s := range spans {
		names[s.Name] = true
	}
	if !names["coordinator.graph"] {
		t.Error("expected a coordinator.graph span")
	}
	if !names["coordinator.node"] {
		t.Error("expected a coordinator.node span")
	}
}
