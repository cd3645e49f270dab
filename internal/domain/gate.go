package domain

import "time"

// Gate is the pass/fail checkpoint evaluated at a phase boundary against the
// findings accumulated during that phase. A Gate instance is created fresh
// at each evaluation; its verdict is terminal for that phase unless a retry
// cycle triggers a new evaluation for the same phase.
//
// Example JSON representation:
//
//	{
//	    "phase": "review",
//	    "threshold": "high",
//	    "passed": false,
//	    "blocking": [...],
//	    "evaluated_at": "2026-08-29T10:05:00Z"
//	}
type Gate struct {
	// Phase identifies which phase boundary this gate guards.
	Phase Phase `json:"phase"`

	// Threshold is the severity at or above which a finding blocks the gate.
	Threshold Severity `json:"threshold"`

	// Passed is the verdict: true when no finding met the threshold.
	Passed bool `json:"passed"`

	// Blocking lists the findings that caused a failure verdict, verbatim.
	// Empty when Passed is true.
	Blocking []Finding `json:"blocking,omitempty"`

	// EvaluatedAt is when the evaluation happened.
	EvaluatedAt time.Time `json:"evaluated_at"`
}
