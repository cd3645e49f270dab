package domain

import "github.com/mrz1836/conductor/internal/constants"

// Deliverable is the engine's output: the final artifact per capability,
// the chronological gate history, the complete finding history (including
// findings remediated during retries), and the terminal status.
// A Deliverable is deterministic given an identical terminal WorkflowRun.
//
// Example JSON representation:
//
//	{
//	    "run_id": "9f0c...",
//	    "artifacts": {"develop": {...}, "review": {...}},
//	    "gate_history": [...],
//	    "finding_history": [...],
//	    "final_status": "succeeded"
//	}
type Deliverable struct {
	// RunID identifies the workflow run this deliverable was synthesized from.
	RunID string `json:"run_id"`

	// Goal is the goal name carried over from the run.
	Goal string `json:"goal,omitempty"`

	// Artifacts maps each capability to the artifact of its last
	// successful task.
	Artifacts map[string]any `json:"artifacts"`

	// GateHistory lists every gate verdict, chronologically.
	GateHistory []Gate `json:"gate_history"`

	// FindingHistory lists every finding recorded during execution,
	// chronologically, with no loss and no duplication.
	FindingHistory []Finding `json:"finding_history"`

	// FinalStatus is the run's terminal status (succeeded/failed/aborted).
	FinalStatus constants.RunStatus `json:"final_status"`
}
