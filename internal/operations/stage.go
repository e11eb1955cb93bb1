package operations

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Step represents a single step of a dataset import
type Step interface {
	// ID returns the unique identifier for this Step, see StepID
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Dataset returns the table the step belongs to
	Dataset() string

	// Execute runs the Step with the given context and operation state
	Execute(ctx context.Context, state *OperationState) error

	// Validate checks if the Step can be executed with the current state
	Validate(state *OperationState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex           `json:"-"`
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Dataset   string                 `json:"dataset"`
	Status    StepStatus             `json:"status"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Message   string                 `json:"message"`
	Error     error                  `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name, dataset string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Dataset:  dataset,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the Step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// SetMetadata records a value reported by the step, such as a row count
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// BaseStage provides common functionality for Step implementations
type BaseStage struct {
	id      string
	name    string
	dataset string
}

// NewBaseStage creates a new base Step of the given kind for dataset
func NewBaseStage(dataset, kind, name string) BaseStage {
	return BaseStage{
		id:      StepID(dataset, kind),
		name:    name,
		dataset: dataset,
	}
}

// ID returns the Step ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Step name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Dataset returns the dataset the Step belongs to
func (b *BaseStage) Dataset() string {
	if b == nil {
		return ""
	}
	return b.dataset
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *OperationState) error {
	if b == nil {
		return fmt.Errorf("BaseStage is nil")
	}
	return nil
}

// FuncStep adapts a function to the Step interface
type FuncStep struct {
	BaseStage
	run      func(ctx context.Context, state *OperationState) error
	validate func(state *OperationState) error
}

// NewFuncStep creates a step of the given kind running fn
func NewFuncStep(dataset, kind, name string, fn func(ctx context.Context, state *OperationState) error) *FuncStep {
	return &FuncStep{
		BaseStage: NewBaseStage(dataset, kind, name),
		run:       fn,
	}
}

// WithValidate sets the precondition checked before Execute
func (f *FuncStep) WithValidate(fn func(state *OperationState) error) *FuncStep {
	f.validate = fn
	return f
}

// Execute runs the wrapped function
func (f *FuncStep) Execute(ctx context.Context, state *OperationState) error {
	return f.run(ctx, state)
}

// Validate runs the precondition, if any
func (f *FuncStep) Validate(state *OperationState) error {
	if f.validate == nil {
		return nil
	}
	return f.validate(state)
}
