package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestCallMeta_SpanNameWithOperation verifies span name includes the operation.
func TestCallMeta_SpanNameWithOperation(t *testing.T) {
	meta := CallMeta{
		Dependency: "market_data",
		Operation:  "get_prices",
	}

	expected := "guard.call.market_data.get_prices"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestCallMeta_SpanNameDependencyOnly verifies span name without an operation.
func TestCallMeta_SpanNameDependencyOnly(t *testing.T) {
	meta := CallMeta{
		Dependency: "database",
	}

	expected := "guard.call.database"
	if got := meta.SpanName(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// TestCallMeta_CallID verifies identifier generation with and without operation.
func TestCallMeta_CallID(t *testing.T) {
	tests := []struct {
		name     string
		meta     CallMeta
		expected string
	}{
		{
			name:     "with operation",
			meta:     CallMeta{Dependency: "llm", Operation: "analyze"},
			expected: "llm.analyze",
		},
		{
			name:     "dependency only",
			meta:     CallMeta{Dependency: "database"},
			expected: "database",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.CallID(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

// TestTracer_SpanAttributes verifies all attributes are present on span.
func TestTracer_SpanAttributes(t *testing.T) {
	// Set up in-memory span recorder
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{
		Dependency: "market_data",
		Operation:  "get_prices",
		Category:   "prices",
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx // Suppress unused warning

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify span name
	if s.Name() != "guard.call.market_data.get_prices" {
		t.Errorf("expected span name 'guard.call.market_data.get_prices', got %q", s.Name())
	}

	// Verify attributes
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes
	if v, ok := attrMap["call.id"]; !ok || v.AsString() != "market_data.get_prices" {
		t.Errorf("expected call.id='market_data.get_prices', got %v", v)
	}
	if v, ok := attrMap["call.dependency"]; !ok || v.AsString() != "market_data" {
		t.Errorf("expected call.dependency='market_data', got %v", v)
	}
	if v, ok := attrMap["call.error"]; !ok || v.AsBool() != false {
		t.Errorf("expected call.error=false, got %v", v)
	}

	// Optional attributes
	if v, ok := attrMap["call.operation"]; !ok || v.AsString() != "get_prices" {
		t.Errorf("expected call.operation='get_prices', got %v", v)
	}
	if v, ok := attrMap["call.cache_category"]; !ok || v.AsString() != "prices" {
		t.Errorf("expected call.cache_category='prices', got %v", v)
	}
}

// TestTracer_SpanAttributesMinimal verifies only required attributes when minimal meta.
func TestTracer_SpanAttributesMinimal(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{
		Dependency: "database",
	}

	ctx, span := tr.StartSpan(context.Background(), meta)
	tr.EndSpan(span, nil)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	attrs := s.Attributes()
	attrMap := make(map[string]attribute.Value)
	for _, a := range attrs {
		attrMap[string(a.Key)] = a.Value
	}

	// Required attributes should be present
	if _, ok := attrMap["call.id"]; !ok {
		t.Error("expected call.id attribute")
	}
	if _, ok := attrMap["call.dependency"]; !ok {
		t.Error("expected call.dependency attribute")
	}
	if _, ok := attrMap["call.error"]; !ok {
		t.Error("expected call.error attribute")
	}

	// Optional attributes should NOT be present when empty
	if v, ok := attrMap["call.operation"]; ok && v.AsString() != "" {
		t.Errorf("expected no call.operation, got %v", v)
	}
	if v, ok := attrMap["call.cache_category"]; ok && v.AsString() != "" {
		t.Errorf("expected no call.cache_category, got %v", v)
	}
}

// TestTracer_ContextPropagation verifies parent span is propagated.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{Dependency: "filings"}

	// Create parent span
	parentCtx, parentSpan := tracer.Start(context.Background(), "parent")

	// Create child span through our tracer
	childCtx, childSpan := tr.StartSpan(parentCtx, meta)
	tr.EndSpan(childSpan, nil)
	parentSpan.End()
	_ = childCtx

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	// Find the child span (the one with guard.call prefix)
	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == "guard.call.filings" {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	// Verify parent-child relationship
	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

// TestTracer_ErrorRecording verifies error sets span status and attribute.
func TestTracer_ErrorRecording(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	tr := &tracerImpl{tracer: tracer}
	meta := CallMeta{Dependency: "llm"}

	ctx, span := tr.StartSpan(context.Background(), meta)
	testErr := errors.New("call failed")
	tr.EndSpan(span, testErr)
	_ = ctx

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]

	// Verify error status
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}

	// Verify call.error attribute
	attrs := s.Attributes()
	var callError bool
	for _, a := range attrs {
		if string(a.Key) == "call.error" {
			callError = a.Value.AsBool()
			break
		}
	}
	if !callError {
		t.Error("expected call.error=true")
	}
}
