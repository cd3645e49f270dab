// Package engine provides the scheduler/executor for workflow runs.
//
// This file implements the task and run state machines, which enforce valid
// state transitions and maintain an audit trail of run status changes.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/registry, internal/worker, internal/clock, std lib
//   - MUST NOT import: internal/cli, internal/config, internal/store
package engine

import (
	"fmt"
	"time"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the task lifecycle.
// Format: from_status -> []to_statuses
//
// The state machine follows this flow:
//
//	Pending → Ready, Blocked
//	Ready → Dispatched, Blocked
//	Dispatched → Completed, Failed
//	Failed → Pending (retry controller only)
//
// Completed and Blocked are terminal. Failed is terminal unless the retry
// controller re-opens the task within the run's retry budget.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.TaskStatus][]constants.TaskStatus{
	constants.TaskStatusPending: {
		constants.TaskStatusReady,
		constants.TaskStatusBlocked,
	},
	constants.TaskStatusReady: {
		constants.TaskStatusDispatched,
		constants.TaskStatusBlocked,
	},
	constants.TaskStatusDispatched: {
		constants.TaskStatusCompleted,
		constants.TaskStatusFailed,
	},
	constants.TaskStatusFailed: {
		constants.TaskStatusPending, // Retry controller re-opens within budget
	},
}

// RunValidTransitions defines all allowed state transitions for a run.
//
//nolint:gochecknoglobals // Read-only lookup table
var RunValidTransitions = map[constants.RunStatus][]constants.RunStatus{
	constants.RunStatusPending: {
		constants.RunStatusRunning,
		constants.RunStatusAborted,
	},
	constants.RunStatusRunning: {
		constants.RunStatusSucceeded,
		constants.RunStatusFailed,
		constants.RunStatusAborted,
	},
}

// IsValidTransition checks if a task transition from one status to another
// is allowed. Returns false for transitions from terminal states or to the
// same state.
func IsValidTransition(from, to constants.TaskStatus) bool {
	if from == to {
		return false
	}
	for _, target := range ValidTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// transitionTask validates and applies a state transition to the task,
// updating the attempt counter and timestamps. The caller holds the
// engine's write lock.
func transitionTask(task *domain.Task, to constants.TaskStatus, now time.Time) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", conductorerrors.ErrInvalidTransition)
	}
	if !IsValidTransition(task.Status, to) {
		return fmt.Errorf("%w: task %s cannot transition from %s to %s",
			conductorerrors.ErrInvalidTransition, task.ID, task.Status, to)
	}

	task.Status = to

	switch to {
	case constants.TaskStatusDispatched:
		task.Attempts++
		started := now
		task.StartedAt = &started
	case constants.TaskStatusCompleted, constants.TaskStatusFailed, constants.TaskStatusBlocked:
		completed := now
		task.CompletedAt = &completed
	case constants.TaskStatusPending:
		// Re-opened by the retry controller; a fresh attempt will restamp.
		task.CompletedAt = nil
	case constants.TaskStatusReady:
	}

	return nil
}

// transitionRun validates and applies a run status change, recording it in
// the run's audit trail.
func transitionRun(run *domain.WorkflowRun, to constants.RunStatus, reason string, now time.Time) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", conductorerrors.ErrInvalidTransition)
	}

	from := run.Status
	valid := false
	for _, target := range RunValidTransitions[from] {
		if target == to {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: run %s cannot transition from %s to %s",
			conductorerrors.ErrInvalidTransition, run.ID, from, to)
	}

	run.Transitions = append(run.Transitions, domain.Transition{
		From:   from,
		To:     to,
		Reason: reason,
		At:     now,
	})
	run.Status = to
	run.UpdatedAt = now

	if run.IsTerminal() {
		completed := now
		run.CompletedAt = &completed
	}

	return nil
}
