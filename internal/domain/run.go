package domain

import (
	"time"

	"github.com/mrz1836/conductor/internal/constants"
)

// WorkflowRun is the aggregate root for one orchestrated goal: the ordered
// phases, the full task graph, the sequence of gate evaluations, the
// remaining retry budget, and the terminal status. A run is exclusively
// owned by the engine for its duration; readers take a snapshot rather than
// racing live mutation.
//
// Example JSON representation:
//
//	{
//	    "id": "9f0c...",
//	    "goal": "release-1.4",
//	    "phases": ["development", "review"],
//	    "tasks": [...],
//	    "gates": [...],
//	    "retry_budget": 1,
//	    "status": "succeeded",
//	    "schema_version": 1
//	}
type WorkflowRun struct {
	// ID is the unique identifier for the run (UUID).
	ID string `json:"id"`

	// Goal is the human-readable name of the goal descriptor.
	Goal string `json:"goal,omitempty"`

	// Phases lists the phases present in the graph, in canonical order.
	Phases []Phase `json:"phases"`

	// Tasks is the full task graph in builder enumeration order.
	// Remediation tasks are appended as retry cycles create them.
	Tasks []*Task `json:"tasks"`

	// Gates records every gate evaluation, chronologically.
	Gates []Gate `json:"gates,omitempty"`

	// FindingLog records every finding ever reported during the run,
	// chronologically, including findings remediated by later cycles.
	FindingLog []Finding `json:"finding_log,omitempty"`

	// GateThresholds maps each phase to its blocking severity threshold.
	GateThresholds map[Phase]Severity `json:"gate_thresholds"`

	// RetryBudget is the number of remediation cycles remaining.
	// Strictly decremented, never restored.
	RetryBudget int `json:"retry_budget"`

	// RetryBudgetInitial is the budget the run started with.
	RetryBudgetInitial int `json:"retry_budget_initial"`

	// Status is the current run state.
	Status constants.RunStatus `json:"status"`

	// Transitions is the audit trail of run status changes.
	Transitions []Transition `json:"transitions,omitempty"`

	// CreatedAt is when the run was built.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the run was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the run reached a terminal status (nil until then).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// SchemaVersion indicates the version of the WorkflowRun schema.
	// This enables forward-compatible migrations of archived runs.
	SchemaVersion int `json:"schema_version"`
}

// Transition records a single run status change for the audit trail.
type Transition struct {
	// From is the status before the transition.
	From constants.RunStatus `json:"from"`

	// To is the status after the transition.
	To constants.RunStatus `json:"to"`

	// Reason explains why the transition happened.
	Reason string `json:"reason,omitempty"`

	// At is when the transition happened.
	At time.Time `json:"at"`
}

// Task returns the task with the given ID, or nil if absent.
func (r *WorkflowRun) Task(id string) *Task {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TasksInPhase returns the tasks assigned to the given phase, in
// enumeration order.
func (r *WorkflowRun) TasksInPhase(p Phase) []*Task {
	var out []*Task
	for _, t := range r.Tasks {
		if t.Phase == p {
			out = append(out, t)
		}
	}
	return out
}

// IsTerminal reports whether the run reached a terminal status.
func (r *WorkflowRun) IsTerminal() bool {
	switch r.Status {
	case constants.RunStatusSucceeded, constants.RunStatusFailed, constants.RunStatusAborted:
		return true
	case constants.RunStatusPending, constants.RunStatusRunning:
		return false
	}
	return false
}

// Threshold returns the gate threshold configured for the phase.
// Phases without an explicit threshold block on high-or-above.
func (r *WorkflowRun) Threshold(p Phase) Severity {
	if s, ok := r.GateThresholds[p]; ok {
		return s
	}
	return SeverityHigh
}
