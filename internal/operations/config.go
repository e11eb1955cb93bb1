package operations

import (
	"time"
)

// Config represents the operation execution configuration
type Config struct {
	// Per step-kind timeouts, keyed by StepFetch, StepParse...
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`

	// DefaultTimeout applies to kinds without an entry; zero disables it
	DefaultTimeout time.Duration `json:"default_timeout"`
}

// NewConfig returns the default operation configuration
func NewConfig() *Config {
	return &Config{
		StageTimeouts: map[string]time.Duration{
			StepFetch: DefaultFetchTimeout,
		},
		DefaultTimeout: DefaultStageTimeout,
	}
}

// GetStageTimeout returns the timeout for a step, looked up by its kind
func (c *Config) GetStageTimeout(stepID string) time.Duration {
	if timeout, ok := c.StageTimeouts[StepKind(stepID)]; ok {
		return timeout
	}
	return c.DefaultTimeout
}

// SetStageTimeout sets the timeout for a step kind
func (c *Config) SetStageTimeout(kind string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[kind] = timeout
}
