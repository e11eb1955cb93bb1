package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"datastorage/internal/infrastructure"
)

const (
	TracerName = "datastorage.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for runs and steps
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.ETLMetrics
}

// NewOperationTracer creates a tracer; nil arguments record nothing
func NewOperationTracer(tracer trace.Tracer, metrics *infrastructure.ETLMetrics) *OperationTracer {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, datasets []string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.datasets", datasets),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID string, step Step) (context.Context, trace.Span) {
	kind := StepKind(step.ID())
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", kind),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.kind", kind),
			attribute.String("step.dataset", step.Dataset()),
		),
	)
}

// RecordStageCompletion closes the step span and records the step metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, step Step, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	pt.metrics.RecordStep(ctx, step.Dataset(), StepKind(step.ID()), duration, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "step execution failed")
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordOperationCompletion sets the final status of the run span
func (pt *OperationTracer) RecordOperationCompletion(span trace.Span, status OperationStatusValue, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(status)),
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("operation %s", status))
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}
