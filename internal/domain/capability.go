package domain

import "time"

// CapabilityDescriptor describes one named unit of specialized work a
// specialist worker can perform (e.g., "develop", "review",
// "security-review"). Descriptors are immutable after registration and
// shared read-only by all engine components.
//
// Example JSON representation:
//
//	{
//	    "name": "review",
//	    "phase": "review",
//	    "input_schema": {"diff": "string"},
//	    "output_schema": {"verdict": "string"},
//	    "concurrency_safe": true,
//	    "retriable": true,
//	    "timeout": 300000000000
//	}
type CapabilityDescriptor struct {
	// Name uniquely identifies the capability in the registry.
	Name string `json:"name"`

	// Phase is the default phase for tasks of this capability.
	// Goal descriptors may override it per capability.
	Phase Phase `json:"phase"`

	// InputSchema describes the expected input payload fields
	// (field name -> human-readable type description).
	InputSchema map[string]string `json:"input_schema,omitempty"`

	// OutputSchema describes the produced artifact fields.
	OutputSchema map[string]string `json:"output_schema,omitempty"`

	// ConcurrencySafe indicates whether multiple instances of this
	// capability may run simultaneously. Unsafe capabilities are
	// serialized by the scheduler.
	ConcurrencySafe bool `json:"concurrency_safe"`

	// Retriable indicates the idempotency class: whether a failed task of
	// this capability may be dispatched again. Non-retriable failures
	// block all transitive dependents.
	Retriable bool `json:"retriable"`

	// Timeout is the maximum duration a single invocation may take.
	// Zero means the engine default applies.
	Timeout time.Duration `json:"timeout,omitempty"`
}
