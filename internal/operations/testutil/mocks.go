package testutil

import (
	"context"
	"sync"
	"time"

	"datastorage/internal/operations"
)

// MockStage is a configurable mock implementation of the step interface
type MockStage struct {
	IDValue      string
	NameValue    string
	DatasetValue string

	// Configurable functions
	ExecuteFunc  func(ctx context.Context, state *operations.OperationState) error
	ValidateFunc func(state *operations.OperationState) error

	// Call tracking
	mu            sync.Mutex
	ExecuteCalls  int
	ExecuteTimes  []time.Time
	ValidateCalls int
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// Dataset returns the step dataset
func (m *MockStage) Dataset() string {
	return m.DatasetValue
}

// Execute runs the mock execute function
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.mu.Lock()
	m.ExecuteCalls++
	m.ExecuteTimes = append(m.ExecuteTimes, time.Now())
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// Validate runs the mock validate function
func (m *MockStage) Validate(state *operations.OperationState) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(state)
	}
	return nil
}

// GetExecuteCalls returns the number of Execute calls
func (m *MockStage) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// GetValidateCalls returns the number of Validate calls
func (m *MockStage) GetValidateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ValidateCalls
}
