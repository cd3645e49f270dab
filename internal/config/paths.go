package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/errors"
)

// GlobalConfigDir returns the path to the global Conductor configuration
// directory, typically ~/.conductor. The CONDUCTOR_HOME environment
// variable overrides it.
func GlobalConfigDir() (string, error) {
	if home := os.Getenv(constants.HomeEnvVar); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ConductorHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.conductor/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .conductor/config.yaml under the project root.
func ProjectConfigPath() string {
	return filepath.Join(constants.ConductorHome, "config.yaml")
}

// RunsDir returns the directory holding archived terminal runs.
func RunsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.RunsDir), nil
}

// LogsDir returns the directory holding rotating CLI log files.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}
