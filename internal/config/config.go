// Package config provides configuration management for Conductor.
//
// Configuration is loaded from YAML files with environment variable
// overrides (CONDUCTOR_* prefix). A global config (~/.conductor/config.yaml)
// provides user-wide defaults; a project config (.conductor/config.yaml)
// overrides it per project.
package config

import (
	"time"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
)

// Config is the root configuration structure.
type Config struct {
	// Engine holds scheduler and gate settings.
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`

	// Capabilities declares the script-backed capabilities to register.
	Capabilities []CapabilityConfig `mapstructure:"capabilities" yaml:"capabilities"`
}

// EngineConfig holds scheduler/executor settings.
type EngineConfig struct {
	// Concurrency is the ceiling on simultaneously dispatched tasks.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// RetryBudget is the default number of remediation cycles per run.
	// Goal descriptors may override it.
	RetryBudget int `mapstructure:"retry_budget" yaml:"retry_budget"`

	// DefaultTimeout bounds capabilities that do not set their own timeout.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`

	// GateThresholds maps phase names to blocking severity names.
	// Phases without an entry block on high-or-above.
	GateThresholds map[string]string `mapstructure:"gate_thresholds" yaml:"gate_thresholds"`
}

// CapabilityConfig declares one capability backed by an external command or
// an interactive decision prompt.
type CapabilityConfig struct {
	// Name is the capability name; must be unique.
	Name string `mapstructure:"name" yaml:"name"`

	// Phase is the capability's default phase.
	Phase string `mapstructure:"phase" yaml:"phase"`

	// Command is the executable and arguments for script-backed
	// capabilities. Empty for interactive ones.
	Command []string `mapstructure:"command" yaml:"command"`

	// Timeout bounds a single invocation; falls back to
	// engine.default_timeout when zero.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// ConcurrencySafe marks the capability safe for parallel dispatch.
	ConcurrencySafe bool `mapstructure:"concurrency_safe" yaml:"concurrency_safe"`

	// Retriable marks failed tasks of this capability eligible for
	// re-dispatch by the retry controller.
	Retriable bool `mapstructure:"retriable" yaml:"retriable"`

	// Interactive marks the capability as a human-in-the-loop decision
	// point instead of a script.
	Interactive bool `mapstructure:"interactive" yaml:"interactive"`
}

// DefaultConfig returns a Config populated with built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Concurrency:    constants.DefaultConcurrency,
			RetryBudget:    constants.DefaultRetryBudget,
			DefaultTimeout: 10 * time.Minute,
			GateThresholds: map[string]string{},
		},
	}
}

// Thresholds converts the configured gate thresholds into domain types.
// Validate guarantees the conversion succeeds for a validated config.
func (c *EngineConfig) Thresholds() (map[domain.Phase]domain.Severity, error) {
	out := make(map[domain.Phase]domain.Severity, len(c.GateThresholds))
	for phaseName, severityName := range c.GateThresholds {
		phase, err := domain.ParsePhase(phaseName)
		if err != nil {
			return nil, err
		}
		severity, err := domain.ParseSeverity(severityName)
		if err != nil {
			return nil, err
		}
		out[phase] = severity
	}
	return out, nil
}

// Descriptor converts a capability config into its registry descriptor.
func (c *CapabilityConfig) Descriptor(defaultTimeout time.Duration) (domain.CapabilityDescriptor, error) {
	phase, err := domain.ParsePhase(c.Phase)
	if err != nil {
		return domain.CapabilityDescriptor{}, err
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return domain.CapabilityDescriptor{
		Name:            c.Name,
		Phase:           phase,
		ConcurrencySafe: c.ConcurrencySafe,
		Retriable:       c.Retriable,
		Timeout:         timeout,
	}, nil
}
