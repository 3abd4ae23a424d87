package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
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

func TestStartGraphSpan(t *testing.T) {
	exporter := withInMemoryTracer(t)

	ctx, span := StartGraphSpan(context.Background(), "run1")
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		t.Error("expected valid span in context")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}
	if spans[0].Name != "coordinator.graph" {
		t.Errorf("expected span name 'coordinator.graph', got %q", spans[0].Name)
	}
}

func TestStartNodeSpan(t *testing.T) {
	exporter := withInMemoryTracer(t)

	_, span := StartNodeSpan(context.Background(), "A", "A@v1")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}
	if spans[0].Name != "coordinator.node" {
		t.Errorf("expected span name 'coordinator.node', got %q", spans[0].Name)
	}

	found := map[string]bool{}
	for _, attr := range spans[0].Attributes {
		found[string(attr.Key)] = true
	}
	if !found["cache.node_name"] || !found["cache.code_version"] {
		t.Error("expected cache.node_name and cache.code_version attributes")
	}
}

func TestSetNodeOutcomeAttributes(t *testing.T) {
	exporter := withInMemoryTracer(t)

	ctx, span := Tracer().Start(context.Background(), "test")
	SetNodeOutcomeAttributes(ctx, "ctxkey", "A@v1:abcd", true, false)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	attrs := map[string]interface{}{}
	for _, attr := range spans[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	if attrs["cache.hit"] != true {
		t.Errorf("expected cache.hit = true, got %v", attrs["cache.hit"])
	}
	if attrs["cache.desync"] != false {
		t.Errorf("expected cache.desync = false, got %v", attrs["cache.desync"])
	}
}

func TestSetGraphOutcomeAttributes(t *testing.T) {
	exporter := withInMemoryTracer(t)

	ctx, span := Tracer().Start(context.Background(), "test")
	SetGraphOutcomeAttributes(ctx, 3, 2, 1)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}

	attrs := map[string]interface{}{}
	for _, attr := range spans[0].Attributes {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	if attrs["cache.node_count"] != int64(3) {
		t.Errorf("expected cache.node_count = 3, got %v", attrs["cache.node_count"])
	}
	if attrs["cache.hits"] != int64(2) {
		t.Errorf("expected cache.hits = 2, got %v", attrs["cache.hits"])
	}
}

func TestRecordError_NilDoesNotPanic(t *testing.T) {
	RecordError(context.Background(), nil)
}

func TestRecordError_RecordsOnSpan(t *testing.T) {
	exporter := withInMemoryTracer(t)

	ctx, span := Tracer().Start(context.Background(), "test")
	RecordError(ctx, errors.New("test error"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) == 0 {
		t.Fatal("expected at least one span")
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}
