// Package domain provides shared domain types for the Conductor orchestration engine.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"fmt"

	"github.com/mrz1836/conductor/internal/errors"
)

// Phase is a coarse-grained workflow stage that acts as a synchronization
// barrier: every task of a phase must reach a terminal status and the phase
// gate must pass before the next phase is admitted.
type Phase string

// Canonical phases, in execution order.
const (
	PhaseDesign      Phase = "design"
	PhaseDevelopment Phase = "development"
	PhaseReview      Phase = "review"
	PhaseSecurity    Phase = "security"
	PhaseDeployment  Phase = "deployment"
)

// canonicalPhases is the fixed phase sequence. Index in this slice defines
// phase ordering for monotonicity checks.
//
//nolint:gochecknoglobals // Read-only lookup table
var canonicalPhases = []Phase{
	PhaseDesign,
	PhaseDevelopment,
	PhaseReview,
	PhaseSecurity,
	PhaseDeployment,
}

// CanonicalPhases returns the fixed phase sequence in execution order.
// The returned slice is a copy and safe for callers to modify.
func CanonicalPhases() []Phase {
	out := make([]Phase, len(canonicalPhases))
	copy(out, canonicalPhases)
	return out
}

// String returns the string representation of the Phase.
// This implements fmt.Stringer for convenient logging and debugging.
func (p Phase) String() string {
	return string(p)
}

// IsValid checks if the phase is part of the canonical sequence.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the position of the phase in the canonical sequence,
// or -1 for an unknown phase.
func (p Phase) Index() int {
	for i, c := range canonicalPhases {
		if c == p {
			return i
		}
	}
	return -1
}

// Before reports whether p comes strictly before q in the canonical sequence.
// Unknown phases never order before anything.
func (p Phase) Before(q Phase) bool {
	pi, qi := p.Index(), q.Index()
	return pi >= 0 && qi >= 0 && pi < qi
}

// ParsePhase converts a string into a Phase, validating it against the
// canonical sequence.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownPhase, s)
	}
	return p, nil
}
