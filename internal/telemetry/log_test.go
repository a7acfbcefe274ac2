package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLoggerWritesServiceName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "inkwell-test", slog.LevelInfo)
	logger.Info("hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["service"] != "inkwell-test" || rec["msg"] != "hello" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestWithTraceAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "svc", slog.LevelInfo)

	if got := WithTrace(context.Background(), logger); got != logger {
		t.Fatal("expected logger unchanged without a span")
	}

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	WithTrace(ctx, logger).Info("traced")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id = %v", rec["trace_id"])
	}
}

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "svc")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
