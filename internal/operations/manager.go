package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"datastorage/internal/infrastructure"
)

// Manager executes the registered steps of a run one after the other
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *OperationTracer

	traceTracer trace.Tracer
	metrics     *infrastructure.ETLMetrics
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConfig replaces the default execution configuration
func WithConfig(config *Config) ManagerOption {
	return func(m *Manager) {
		if config != nil {
			m.config = config
		}
	}
}

// WithTracer opens a span per run and per step
func WithTracer(tracer trace.Tracer) ManagerOption {
	return func(m *Manager) { m.traceTracer = tracer }
}

// WithMetrics records step counts and durations
func WithMetrics(metrics *infrastructure.ETLMetrics) ManagerOption {
	return func(m *Manager) { m.metrics = metrics }
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		registry: registry,
		config:   NewConfig(),
		logger:   logger.With("component", "operations"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.tracer = NewOperationTracer(m.traceTracer, m.metrics)
	return m
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the selected steps in registration order. The first failing
// step stops the run and every later step is marked skipped. The returned
// error wraps the step's own error.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	state := NewOperationState(req.ID)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	err := m.ExecuteState(ctx, state, req.Datasets...)
	return NewResponse(state), err
}

// ExecuteState runs the selected steps against a caller-provided state, so
// callers can seed the context (for instance with already loaded tables)
// and read results back afterwards
func (m *Manager) ExecuteState(ctx context.Context, state *OperationState, datasets ...string) error {
	if state.Status != OperationStatusPending {
		return ErrOperationCompleted
	}

	steps, err := m.registry.Select(datasets...)
	if err == nil && len(steps) == 0 {
		err = ErrNoSteps
	}
	if err != nil {
		state.Fail(err)
		return err
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name(), step.Dataset()))
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := m.tracer.TraceOperationExecution(ctx, state.ID, datasets)
	defer span.End()

	m.logOperationStart(ctx, state.ID, steps)
	state.Start()

	err = m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(span, state.Status, state.Duration(), err)
	m.logOperationComplete(ctx, state.ID, state.Duration(), state.Status)
	return err
}

// executeSequential executes steps one by one, stopping at the first failure
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			cancelErr := NewCancellationError(step.ID(), err)
			m.skipRemaining(ctx, state, steps[i:], "operation cancelled")
			return cancelErr
		}

		m.logStageStart(ctx, state.ID, step, i+1, len(steps))
		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipRemaining(ctx, state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage executes a single Step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		return verr
	}

	stageCtx := infrastructure.WithStep(ctx, step.ID())
	if timeout := m.config.GetStageTimeout(step.ID()); timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(stageCtx, timeout)
		defer cancel()
	}

	stageCtx, span := m.tracer.TraceStageExecution(stageCtx, state.ID, step)
	defer span.End()

	stepState.Start()
	startTime := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(startTime)

	if err == nil {
		stepState.Complete()
		m.tracer.RecordStageCompletion(stageCtx, span, step, duration, nil)
		m.logStageComplete(ctx, state.ID, step.ID(), duration)
		return nil
	}

	var opErr *OperationError
	switch {
	case errors.Is(stageCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		opErr = NewTimeoutError(step.ID(), m.config.GetStageTimeout(step.ID()).String())
		opErr.Cause = err
	case ctx.Err() != nil:
		opErr = NewCancellationError(step.ID(), err)
	default:
		opErr = NewExecutionError(step.ID(), err)
	}

	stepState.Fail(opErr)
	m.tracer.RecordStageCompletion(stageCtx, span, step, duration, opErr)
	return opErr
}

// skipRemaining marks every pending step as skipped
func (m *Manager) skipRemaining(ctx context.Context, state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		stepState := state.GetStage(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
			m.logStageSkipped(ctx, state.ID, step.ID(), reason)
		}
	}
}

// NewResponse summarizes an operation state
func NewResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.OrderedSteps(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
