package operations

import (
	"context"
	"log/slog"
	"time"

	apperrors "datastorage/internal/errors"
)

// logOperationStart logs the start of a run
func (m *Manager) logOperationStart(ctx context.Context, operationID string, steps []Step) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.Int("step_count", len(steps)))
}

// logOperationComplete logs the completion of a run
func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status OperationStatusValue) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", string(status)),
		slog.Duration("duration", duration))
}

// logStageStart logs the start of a Step execution
func (m *Manager) logStageStart(ctx context.Context, operationID string, step Step, number, total int) {
	m.logger.InfoContext(ctx, "stage_start",
		slog.String("operation_id", operationID),
		slog.String("step", step.ID()),
		slog.String("dataset", step.Dataset()),
		slog.Int("stage_number", number),
		slog.Int("total_stages", total))
}

// logStageComplete logs the completion of a Step execution
func (m *Manager) logStageComplete(ctx context.Context, operationID, stageID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "stage_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.Duration("duration", duration))
}

// logStageError logs a Step error with the dataset error context, if any
func (m *Manager) logStageError(ctx context.Context, operationID, stageID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	attrs := []any{
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.String("error", errorMsg),
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		attrs = append(attrs, appErr.LogAttrs()...)
	}
	m.logger.ErrorContext(ctx, "stage_error", attrs...)
}

// logStageSkipped logs a Step that never ran
func (m *Manager) logStageSkipped(ctx context.Context, operationID, stageID, reason string) {
	m.logger.WarnContext(ctx, "stage_skipped",
		slog.String("operation_id", operationID),
		slog.String("step", stageID),
		slog.String("reason", reason))
}
