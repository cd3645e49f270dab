// Package clock provides an abstraction for time operations to improve testability.
// Engine code takes a Clock instead of calling time.Now() directly, so tests can
// control time-dependent behavior such as finding timestamps and gate ordering.
package clock

import "time"

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Fixed returns a Clock that always reports the given time.
// Intended for tests that need deterministic timestamps.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}
