// Package worker defines the specialist worker contract and the worker
// implementations shipped with Conductor.
//
// The engine invokes workers opaquely: it knows the capability contract
// (input payload in, artifact plus findings out) but nothing about the
// domain knowledge a worker applies internally.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/engine, internal/cli
package worker

import (
	"context"

	"github.com/mrz1836/conductor/internal/domain"
)

// Input is everything a worker receives for one invocation.
type Input struct {
	// Task is a read-only copy of the task being executed. Workers must
	// not assume ordering relative to sibling invocations.
	Task domain.Task

	// Remediation carries the findings this invocation should address.
	// Empty for first attempts of builder tasks.
	Remediation []domain.Finding
}

// Worker is the external collaborator that performs domain-specific work
// for one capability. A worker whose capability is marked retriable must
// tolerate being invoked multiple times with the same input.
type Worker interface {
	// Invoke performs the work and returns a structured result.
	//
	// A worker-reported failure is expressed through Result.Success=false
	// with a nil error. A non-nil error means the worker faulted
	// unexpectedly and is treated as a WorkerInvocation error by the
	// engine.
	Invoke(ctx context.Context, in Input) (*domain.TaskResult, error)
}

// Func adapts an ordinary function to the Worker interface.
// Used heavily by tests and for simple in-process capabilities.
type Func func(ctx context.Context, in Input) (*domain.TaskResult, error)

// Invoke implements Worker by calling the function.
func (f Func) Invoke(ctx context.Context, in Input) (*domain.TaskResult, error) {
	return f(ctx, in)
}
