// Package errors provides centralized error handling for Conductor.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrGraphCycle indicates the goal descriptor would produce a cyclic
	// task dependency graph. The error message includes the cycle path.
	ErrGraphCycle = errors.New("dependency graph contains a cycle")

	// ErrUnknownCapability indicates the goal descriptor references a
	// capability that is not registered.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrDuplicateCapability indicates an attempt to register a capability
	// name that is already registered.
	ErrDuplicateCapability = errors.New("capability already registered")

	// ErrCapabilityNotFound indicates a registry lookup for an absent
	// capability name.
	ErrCapabilityNotFound = errors.New("capability not found")

	// ErrPhaseOrdering indicates a task depends on a task in a later phase.
	// Dependencies may only point to the same or an earlier phase.
	ErrPhaseOrdering = errors.New("dependency crosses phase boundary forward")

	// ErrTaskTimeout indicates a task exceeded its capability's configured
	// timeout and was marked failed.
	ErrTaskTimeout = errors.New("task timeout exceeded")

	// ErrWorkerInvocation indicates a worker raised an unexpected fault,
	// distinct from a worker-reported failure status.
	ErrWorkerInvocation = errors.New("worker invocation failed")

	// ErrRetryBudgetExhausted indicates the run consumed its entire retry
	// budget while a gate still failed.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")

	// ErrInvalidTransition indicates an attempt to make an invalid task or
	// run state transition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrGoalEmpty indicates a goal descriptor with no required capabilities.
	ErrGoalEmpty = errors.New("goal requires no capabilities")

	// ErrUnknownPhase indicates a phase name outside the canonical sequence.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrUnknownSeverity indicates an unrecognized finding severity value.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrRunNotFound indicates the requested workflow run does not exist
	// in the archive.
	ErrRunNotFound = errors.New("run not found")

	// ErrRunExists indicates an attempt to archive a run that is already
	// archived.
	ErrRunExists = errors.New("run already archived")

	// ErrRunNotTerminal indicates an operation that requires a terminal run
	// (synthesis, archival) was invoked on a live run.
	ErrRunNotTerminal = errors.New("run is not terminal")

	// ErrRunCorrupted indicates an archived run file is unreadable.
	ErrRunCorrupted = errors.New("archived run corrupted")

	// ErrConfigNil indicates a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidEngine indicates an invalid engine configuration value.
	ErrConfigInvalidEngine = errors.New("invalid engine configuration")

	// ErrConfigInvalidCapability indicates an invalid capability
	// configuration entry.
	ErrConfigInvalidCapability = errors.New("invalid capability configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInteractiveRequired indicates a decision task needs an interactive
	// terminal but none is available.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrWorkerOutputInvalid indicates a script worker produced output that
	// does not parse as a worker result.
	ErrWorkerOutputInvalid = errors.New("worker output not in expected format")

	// ErrGoalFileMissing indicates the goal descriptor file does not exist.
	ErrGoalFileMissing = errors.New("goal file not found")

	// ErrGoalParseError indicates the goal descriptor file has invalid
	// YAML syntax.
	ErrGoalParseError = errors.New("goal parse error")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRunFailed indicates the workflow run reached a terminal failed or
	// aborted status. Used by the CLI to select its exit code.
	ErrRunFailed = errors.New("workflow run did not succeed")
)
