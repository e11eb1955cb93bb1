package operations

import (
	"strings"
	"time"
)

// Step kinds of the import contract, in execution order
const (
	StepFetch     = "fetch"
	StepParse     = "parse"
	StepTransform = "transform"
	StepPersist   = "persist"
)

// Default timeouts
const (
	// DefaultStageTimeout of zero means steps run until their context is done
	DefaultStageTimeout = time.Duration(0)
	// DefaultFetchTimeout bounds a whole fetch step, which may download
	// several archives
	DefaultFetchTimeout = 30 * time.Minute
)

// StepID builds the identifier of the given step kind for dataset
func StepID(dataset, kind string) string {
	return dataset + "." + kind
}

// StepKind returns the kind part of a step identifier
func StepKind(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

// OperationRequest represents a request to run the registered steps
type OperationRequest struct {
	// ID identifies the run; a UUID is generated when empty
	ID string `json:"id,omitempty"`

	// Datasets restricts the run to steps of these datasets; empty runs all
	Datasets []string `json:"datasets,omitempty"`

	// Parameters are copied into the operation config before the first step
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the outcome of a run
type OperationResponse struct {
	ID       string               `json:"id"`
	Status   OperationStatusValue `json:"status"`
	Duration time.Duration        `json:"duration"`
	Steps    []*StepState         `json:"steps"`
	Error    string               `json:"error,omitempty"`
}

// Failed returns the first failed step, or nil
func (r *OperationResponse) Failed() *StepState {
	for _, s := range r.Steps {
		if s.GetStatus() == StepStatusFailed {
			return s
		}
	}
	return nil
}
