package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/conductor/internal/errors"
)

// newViperInstance creates a Viper instance with standard Conductor
// configuration: environment prefix (CONDUCTOR_), key replacer, defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CONDUCTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("engine.concurrency", defaults.Engine.Concurrency)
	v.SetDefault("engine.retry_budget", defaults.Engine.RetryBudget)
	v.SetDefault("engine.default_timeout", defaults.Engine.DefaultTimeout.String())
	v.SetDefault("engine.gate_thresholds", map[string]string{})
	v.SetDefault("capabilities", []CapabilityConfig{})
}

// isConfigNotFoundError returns true if the error is a viper config file
// not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// Load reads configuration from all available sources with proper
// precedence. Configuration is loaded in the following order (highest
// precedence first):
//  1. Environment variables (CONDUCTOR_* prefix)
//  2. Project config (.conductor/config.yaml)
//  3. Global config (~/.conductor/config.yaml)
//  4. Built-in defaults
//
// Missing config files are not errors; many setups run on defaults plus a
// goal file.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Int("engine.concurrency", cfg.Engine.Concurrency).
		Int("engine.retry_budget", cfg.Engine.RetryBudget).
		Dur("engine.default_timeout", cfg.Engine.DefaultTimeout).
		Int("capabilities", len(cfg.Capabilities)).
		Msg("configuration loaded")

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// projectConfigPath has higher priority than globalConfigPath; either can
// be empty to skip that level.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}
	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// loadGlobalConfig attempts to load the global config file. Returns nil if
// the file doesn't exist or the home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil || !fileExists(globalConfigPath) {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig attempts to load the project config file (higher
// precedence, merges over global). Returns nil if the file doesn't exist.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to convert duration strings
// like "30s" into time.Duration values.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
