// Package testutil provides testing utilities for Conductor.
//
// This package contains mock errors and test helpers used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockWorkerFault indicates a mock worker raised an unexpected fault (used in tests).
	ErrMockWorkerFault = errors.New("worker fault")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")

	// ErrMockStoreUnavailable indicates a mock run store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("run store unavailable")

	// ErrMockCommandFailed indicates a mock worker command failed (used in tests).
	ErrMockCommandFailed = errors.New("command failed")
)
