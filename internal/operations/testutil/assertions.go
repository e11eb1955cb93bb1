package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datastorage/internal/operations"
)

// AssertStepStatus verifies a step has the expected status
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	require.NotNil(t, step, "step state is nil")
	assert.Equal(t, expected, step.GetStatus(), "step %s status", step.ID)
}

// AssertStageStatuses verifies the status of every step of a response, in order
func AssertStageStatuses(t *testing.T, resp *operations.OperationResponse, expected ...operations.StepStatus) {
	t.Helper()
	require.NotNil(t, resp)
	require.Len(t, resp.Steps, len(expected))
	for i, s := range resp.Steps {
		assert.Equal(t, expected[i], s.GetStatus(), "step %d (%s)", i, s.ID)
	}
}

// AssertErrorType verifies the operation error type of err
func AssertErrorType(t *testing.T, err error, expectedType operations.ErrorType) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, expectedType, operations.GetErrorType(err))
}
