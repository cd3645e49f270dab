package domain

import (
	"fmt"

	"github.com/mrz1836/conductor/internal/errors"
)

// Severity classifies how serious a finding is. Severities are totally
// ordered; gate thresholds compare against this order.
type Severity string

// Severity constants, from most to least severe.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// severityRanks maps each severity to its rank for threshold comparison.
// Higher rank means more severe. Unknown severities rank 0.
//
//nolint:gochecknoglobals // Read-only lookup table
var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// String returns the string representation of the Severity.
// This implements fmt.Stringer for convenient logging and debugging.
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the severity is a recognized value.
func (s Severity) IsValid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Rank returns the numeric rank of the severity (1=low .. 4=critical).
// Unknown severities rank 0 and therefore never meet any valid threshold.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Meets reports whether the severity is at or above the given threshold.
// A finding whose severity Meets the phase threshold blocks the gate.
func (s Severity) Meets(threshold Severity) bool {
	return s.Rank() >= threshold.Rank() && threshold.IsValid()
}

// ParseSeverity converts a string into a Severity, validating it.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownSeverity, s)
	}
	return sev, nil
}
