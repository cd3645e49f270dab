package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conductor/internal/domain"
	"github.com/mrz1836/conductor/internal/errors"
)

// LoadGoal reads a YAML goal descriptor from disk.
//
// Example goal file:
//
//	name: release-1.4
//	required_capabilities: [develop, review]
//	dependency_hints:
//	  - capability: review
//	    depends_on: develop
//	gate_thresholds:
//	  review: high
//	retry_budget: 2
func LoadGoal(path string) (*domain.GoalDescriptor, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-supplied goal file path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrGoalFileMissing, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to read goal file %s", path)
	}

	var goal domain.GoalDescriptor
	if err := yaml.Unmarshal(data, &goal); err != nil {
		return nil, errors.Wrapf(errors.ErrGoalParseError, "%s: %s", path, err)
	}
	if len(goal.RequiredCapabilities) == 0 {
		return nil, errors.Wrapf(errors.ErrGoalEmpty, "%s", path)
	}

	for _, s := range goal.GateThresholds {
		if !s.IsValid() {
			return nil, errors.Wrapf(errors.ErrUnknownSeverity, "goal gate threshold %q", s)
		}
	}

	return &goal, nil
}
