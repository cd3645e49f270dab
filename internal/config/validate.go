package config

import (
	"github.com/mrz1836/conductor/internal/domain"
	"github.com/mrz1836/conductor/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - engine.concurrency must be positive
//   - engine.retry_budget must not be negative
//   - engine.default_timeout must be positive
//   - engine.gate_thresholds keys and values must parse as phase/severity
//   - capability names must be non-empty and unique
//   - capability phases must be canonical
//   - non-interactive capabilities must declare a command
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateEngineConfig(&cfg.Engine); err != nil {
		return err
	}
	return validateCapabilities(cfg.Capabilities)
}

func validateEngineConfig(cfg *EngineConfig) error {
	if cfg.Concurrency < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine,
			"engine.concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.RetryBudget < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine,
			"engine.retry_budget cannot be negative, got %d", cfg.RetryBudget)
	}
	if cfg.DefaultTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidEngine,
			"engine.default_timeout must be positive, got %s", cfg.DefaultTimeout)
	}

	for phaseName, severityName := range cfg.GateThresholds {
		if _, err := domain.ParsePhase(phaseName); err != nil {
			return errors.Wrapf(errors.ErrConfigInvalidEngine,
				"engine.gate_thresholds: unknown phase %q", phaseName)
		}
		if _, err := domain.ParseSeverity(severityName); err != nil {
			return errors.Wrapf(errors.ErrConfigInvalidEngine,
				"engine.gate_thresholds: unknown severity %q for phase %q", severityName, phaseName)
		}
	}
	return nil
}

func validateCapabilities(caps []CapabilityConfig) error {
	seen := make(map[string]bool, len(caps))
	for i := range caps {
		c := &caps[i]
		if c.Name == "" {
			return errors.Wrap(errors.ErrConfigInvalidCapability,
				"capability name must not be empty")
		}
		if seen[c.Name] {
			return errors.Wrapf(errors.ErrConfigInvalidCapability,
				"duplicate capability %q", c.Name)
		}
		seen[c.Name] = true

		if _, err := domain.ParsePhase(c.Phase); err != nil {
			return errors.Wrapf(errors.ErrConfigInvalidCapability,
				"capability %q: unknown phase %q", c.Name, c.Phase)
		}
		if c.Timeout < 0 {
			return errors.Wrapf(errors.ErrConfigInvalidCapability,
				"capability %q: timeout cannot be negative", c.Name)
		}
		if !c.Interactive && len(c.Command) == 0 {
			return errors.Wrapf(errors.ErrConfigInvalidCapability,
				"capability %q: command must not be empty", c.Name)
		}
	}
	return nil
}
