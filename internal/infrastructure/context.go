package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	stepKey    contextKey = "step"
)

// GenerateTraceID returns a new run identifier (UUID v4)
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithTraceID tags ctx with the run's trace ID
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID of ctx, or "" when it has none
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// ContextWithTraceID tags ctx with a freshly generated trace ID
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID keeps an existing trace ID and generates one otherwise
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// WithStep tags ctx with the pipeline step running under it, e.g.
// "vix_spx.parse". Every record logged with ctx carries it.
func WithStep(ctx context.Context, stepID string) context.Context {
	return context.WithValue(ctx, stepKey, stepID)
}

// GetStep returns the step of ctx, or "" outside a step
func GetStep(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	step, _ := ctx.Value(stepKey).(string)
	return step
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithDataset creates a logger scoped to one dataset table
func WithDataset(logger *slog.Logger, dataset string) *slog.Logger {
	return logger.With("dataset", dataset)
}

// WithError creates a logger with an error field
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
