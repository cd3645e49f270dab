// Package constants provides shared constants for the Conductor orchestration engine.
// This package MUST NOT import any other internal packages.
package constants

// ConductorHome is the default home directory name (relative to $HOME).
const ConductorHome = ".conductor"

// HomeEnvVar is the environment variable that overrides the home directory.
const HomeEnvVar = "CONDUCTOR_HOME"

// Directory names under the conductor home.
const (
	// LogsDir holds rotating CLI log files.
	LogsDir = "logs"

	// RunsDir holds archived terminal workflow runs.
	RunsDir = "runs"
)

// CLILogFileName is the name of the global CLI log file.
const CLILogFileName = "conductor.log"

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of rotated log files.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)

// RunSchemaVersion is the current schema version for archived WorkflowRun
// files. Incremented on breaking changes to enable forward-compatible
// migrations.
const RunSchemaVersion = 1

// DisplayTimeFormat is the timestamp layout used in human-readable CLI
// output.
const DisplayTimeFormat = "2006-01-02 15:04:05"

// Engine defaults, used when configuration does not override them.
const (
	// DefaultConcurrency is the default ceiling on simultaneously
	// dispatched tasks.
	DefaultConcurrency = 4

	// DefaultRetryBudget is the default number of remediation cycles a
	// run may consume before it terminates as failed.
	DefaultRetryBudget = 3
)
