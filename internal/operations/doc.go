// Package operations runs dataset imports as ordered sequences of steps.
//
// Every importer is the same four-step contract, fetch, parse, transform and
// persist, executed strictly in registration order. The Manager stops at the
// first failing step and marks every step after it as skipped; nothing is
// retried.
//
// Core Components:
//
// Step: a single unit of work bound to one dataset. Steps share intermediate
// results (raw file paths, parsed tables) through OperationState.
//
// Registry: the ordered list of steps of one run. Several datasets can be
// registered into the same registry; their steps then run back to back.
//
// Manager: executes a registry, tracks per-step state and timing, opens a
// span per step and records step metrics.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	for _, step := range importer.Steps() {
//		registry.Register(step)
//	}
//
//	manager := operations.NewManager(registry, logger,
//		operations.WithTracer(telemetry.Tracer),
//		operations.WithMetrics(metrics))
//
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
