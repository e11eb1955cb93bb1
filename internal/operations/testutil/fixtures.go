package testutil

import (
	"context"
	"errors"
	"time"

	"datastorage/internal/operations"
)

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(dataset, kind string) *MockStage {
	return &MockStage{
		IDValue:      operations.StepID(dataset, kind),
		NameValue:    kind + " " + dataset,
		DatasetValue: dataset,
	}
}

// CreateFailingStage creates a step that always fails with err
func CreateFailingStage(dataset, kind string, err error) *MockStage {
	if err == nil {
		err = errors.New("step failed")
	}
	s := CreateSuccessfulStage(dataset, kind)
	s.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		return err
	}
	return s
}

// CreateSlowStage creates a step that waits for duration or its context
func CreateSlowStage(dataset, kind string, duration time.Duration) *MockStage {
	s := CreateSuccessfulStage(dataset, kind)
	s.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
	return s
}

// CreateContextAwareStage creates a step that requires readKey, when set,
// and writes writeValue under writeKey
func CreateContextAwareStage(dataset, kind, readKey, writeKey string, writeValue interface{}) *MockStage {
	s := CreateSuccessfulStage(dataset, kind)
	s.ExecuteFunc = func(ctx context.Context, state *operations.OperationState) error {
		if readKey != "" {
			if _, ok := state.GetContext(readKey); !ok {
				return errors.New("missing context value " + readKey)
			}
		}
		state.SetContext(writeKey, writeValue)
		return nil
	}
	return s
}

// CreateImportStages creates the four steps of one dataset import
func CreateImportStages(dataset string) []operations.Step {
	return []operations.Step{
		CreateSuccessfulStage(dataset, operations.StepFetch),
		CreateSuccessfulStage(dataset, operations.StepParse),
		CreateSuccessfulStage(dataset, operations.StepTransform),
		CreateSuccessfulStage(dataset, operations.StepPersist),
	}
}
