package domain

import (
	"time"

	"github.com/mrz1836/conductor/internal/constants"
)

// Task represents a single unit of work in a workflow run: one invocation
// target for a capability, annotated with a phase and a dependency set.
// Tasks are owned exclusively by the scheduler for their lifetime and
// referenced read-only by the synthesizer after completion.
//
// Example JSON representation:
//
//	{
//	    "id": "develop-1",
//	    "capability": "develop",
//	    "phase": "development",
//	    "depends_on": ["design-1"],
//	    "status": "completed",
//	    "attempts": 1,
//	    "created_at": "2026-08-29T10:00:00Z"
//	}
type Task struct {
	// ID is the unique, deterministic identifier for the task.
	// Builder tasks use "<capability>-<ordinal>"; remediation tasks use
	// "<capability>-r<cycle>".
	ID string `json:"id"`

	// Capability names the registered capability this task exercises.
	Capability string `json:"capability"`

	// Phase is the workflow phase the task belongs to.
	Phase Phase `json:"phase"`

	// DependsOn lists task IDs that must reach terminal success before
	// this task may be dispatched. Dependencies only reference tasks in
	// the same or an earlier phase.
	DependsOn []string `json:"depends_on,omitempty"`

	// Input is the payload handed to the worker.
	Input map[string]any `json:"input,omitempty"`

	// Remediation carries the findings this task was synthesized to
	// address. Empty for builder tasks.
	Remediation []Finding `json:"remediation,omitempty"`

	// Status is the current state in the task state machine.
	Status constants.TaskStatus `json:"status"`

	// Attempts counts how many times the task has been dispatched.
	Attempts int `json:"attempts"`

	// Result holds the outcome of the most recent attempt.
	// Nil until the task first reaches a terminal status.
	Result *TaskResult `json:"result,omitempty"`

	// Error contains the failure reason when Status is failed or blocked.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was added to the graph.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the most recent dispatch began (nil if never dispatched).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the task reached a terminal status (nil until then).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskResult captures the outcome of one worker invocation.
//
// Example JSON representation:
//
//	{
//	    "artifact": {"manifest": "..."},
//	    "findings": [...],
//	    "success": true,
//	    "duration": 45000000000
//	}
type TaskResult struct {
	// Artifact is the worker-produced output. Opaque to the engine.
	Artifact any `json:"artifact,omitempty"`

	// Findings lists the issues the worker reported during this invocation.
	Findings []Finding `json:"findings,omitempty"`

	// Success indicates whether the worker reported success.
	Success bool `json:"success"`

	// Error contains the failure reason if Success is false.
	Error string `json:"error,omitempty"`

	// Duration is how long the invocation took.
	Duration time.Duration `json:"duration"`
}

// IsTerminal reports whether the task is in a terminal status given its
// capability's idempotency class. Completed and blocked are always terminal;
// failed is terminal for the scheduler's purposes once the phase barrier is
// reached (the retry controller alone may re-open it).
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case constants.TaskStatusCompleted, constants.TaskStatusFailed, constants.TaskStatusBlocked:
		return true
	case constants.TaskStatusPending, constants.TaskStatusReady, constants.TaskStatusDispatched:
		return false
	}
	return false
}

// Succeeded reports whether the task reached terminal success.
func (t *Task) Succeeded() bool {
	return t.Status == constants.TaskStatusCompleted
}
