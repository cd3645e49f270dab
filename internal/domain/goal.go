package domain

// GoalDescriptor is the engine's input: the capabilities a goal requires,
// optional explicit dependency hints, per-capability phase overrides,
// per-phase gate thresholds, and the retry budget.
//
// Example YAML representation:
//
//	name: release-1.4
//	required_capabilities: [develop, review]
//	dependency_hints:
//	  - capability: review
//	    depends_on: develop
//	gate_thresholds:
//	  review: high
//	retry_budget: 1
type GoalDescriptor struct {
	// Name is a human-readable label for the goal.
	Name string `json:"name" yaml:"name"`

	// RequiredCapabilities lists the capabilities the goal needs, in
	// order. The builder creates one task per entry; order defines the
	// deterministic enumeration order.
	RequiredCapabilities []string `json:"required_capabilities" yaml:"required_capabilities"`

	// DependencyHints declares explicit dependencies between capabilities
	// beyond the implicit phase barriers.
	DependencyHints []DependencyHint `json:"dependency_hints,omitempty" yaml:"dependency_hints"`

	// PhaseOverrides reassigns a capability to a phase other than its
	// descriptor default.
	PhaseOverrides map[string]Phase `json:"phase_overrides,omitempty" yaml:"phase_overrides"`

	// GateThresholds overrides the configured blocking threshold per phase.
	GateThresholds map[Phase]Severity `json:"gate_thresholds,omitempty" yaml:"gate_thresholds"`

	// RetryBudget is the number of remediation cycles allowed.
	// Zero means the configured default applies.
	RetryBudget int `json:"retry_budget,omitempty" yaml:"retry_budget"`

	// Inputs provides initial input payloads per capability.
	Inputs map[string]map[string]any `json:"inputs,omitempty" yaml:"inputs"`
}

// DependencyHint declares that tasks of Capability depend on tasks of
// DependsOn.
type DependencyHint struct {
	// Capability is the dependent capability.
	Capability string `json:"capability" yaml:"capability"`

	// DependsOn is the capability that must complete first.
	DependsOn string `json:"depends_on" yaml:"depends_on"`
}
