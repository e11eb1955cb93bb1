package operations

import (
	"fmt"
	"sync"
)

// Registry holds the steps of a run in registration order
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string
}

// NewRegistry creates an empty Step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register appends a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// RegisterAll registers steps in order, stopping at the first error
func (r *Registry) RegisterAll(steps ...Step) error {
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, fmt.Errorf("step with ID %s not found", id)
	}
	return step, nil
}

// Has checks if a Step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[id]
	return exists
}

// List returns all registered steps in registration order
func (r *Registry) List() []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := make([]Step, 0, len(r.order))
	for _, id := range r.order {
		steps = append(steps, r.steps[id])
	}
	return steps
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Datasets returns the distinct datasets in registration order
func (r *Registry) Datasets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var datasets []string
	for _, id := range r.order {
		ds := r.steps[id].Dataset()
		if !seen[ds] {
			seen[ds] = true
			datasets = append(datasets, ds)
		}
	}
	return datasets
}

// Select returns the steps of the given datasets in registration order.
// An empty selection returns every step; an unknown dataset is an error.
func (r *Registry) Select(datasets ...string) ([]Step, error) {
	if len(datasets) == 0 {
		return r.List(), nil
	}

	wanted := make(map[string]bool, len(datasets))
	for _, ds := range datasets {
		wanted[ds] = false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var steps []Step
	for _, id := range r.order {
		step := r.steps[id]
		if _, ok := wanted[step.Dataset()]; ok {
			wanted[step.Dataset()] = true
			steps = append(steps, step)
		}
	}
	for _, ds := range datasets {
		if !wanted[ds] {
			return nil, fmt.Errorf("dataset %s has no registered steps", ds)
		}
	}
	return steps, nil
}

// Count returns the number of registered steps
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.steps)
}

// Clear removes all registered steps
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps = make(map[string]Step)
	r.order = make([]string, 0)
}
