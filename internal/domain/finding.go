package domain

import "time"

// Finding is a reported issue produced by a specialist worker during task
// execution. Findings are never mutated after creation; they are consumed
// by the quality gate evaluator and the result synthesizer.
//
// Example JSON representation:
//
//	{
//	    "severity": "critical",
//	    "task_id": "review-1",
//	    "capability": "develop",
//	    "description": "credential material embedded in generated manifest",
//	    "remediation": "reference the credential by name instead",
//	    "phase": "review",
//	    "reported_at": "2026-08-29T10:00:00Z"
//	}
type Finding struct {
	// Severity classifies the finding (critical/high/medium/low).
	Severity Severity `json:"severity"`

	// TaskID identifies the task whose invocation reported the finding.
	TaskID string `json:"task_id"`

	// Capability names the capability responsible for remediating the
	// finding. Workers reviewing another capability's output set this to
	// the reviewed capability; when empty, the engine attributes the
	// finding to the reporting task's own capability.
	Capability string `json:"capability,omitempty"`

	// Description is a human-readable summary of the issue.
	Description string `json:"description"`

	// Remediation is an optional hint for the remediation worker.
	Remediation string `json:"remediation,omitempty"`

	// Phase is the phase in which the finding was reported.
	// Set by the engine when the finding is recorded.
	Phase Phase `json:"phase,omitempty"`

	// ReportedAt is when the engine recorded the finding.
	ReportedAt time.Time `json:"reported_at"`
}
