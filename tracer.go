package idtoken

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// SpanVerification is the span name clients start around each verification.
const SpanVerification = "idtoken.verify"

// Tracer is the tracing interface used by clients.
type Tracer interface {
	StartSpan(operationName string) Span
}

// Span is one traced verification.
type Span interface {
	Finish()
	SetTag(key string, value interface{})
}

// NoopTracer records nothing. It is the default.
type NoopTracer struct{}

func (t *NoopTracer) StartSpan(operationName string) Span { return &NoopSpan{} }

type NoopSpan struct{}

func (s *NoopSpan) Finish()                              {}
func (s *NoopSpan) SetTag(key string, value interface{}) {}

// OpenTelemetryTracer implements Tracer on an OpenTelemetry tracer. Spans
// are started without a parent; the Tracer seam carries no context.
type OpenTelemetryTracer struct {
	tracer oteltrace.Tracer
}

// NewOpenTelemetryTracer returns a Tracer backed by OpenTelemetry.
func NewOpenTelemetryTracer(tracer oteltrace.Tracer) Tracer {
	return &OpenTelemetryTracer{tracer: tracer}
}

func (t *OpenTelemetryTracer) StartSpan(operationName string) Span {
	_, span := t.tracer.Start(context.Background(), operationName)
	return &OpenTelemetrySpan{span: span}
}

// OpenTelemetrySpan implements Span on an OpenTelemetry span.
type OpenTelemetrySpan struct {
	span oteltrace.Span
}

func (s *OpenTelemetrySpan) Finish() {
	s.span.End()
}

func (s *OpenTelemetrySpan) SetTag(key string, value interface{}) {
	s.span.SetAttributes(attribute.String(key, fmt.Sprint(value)))
}
