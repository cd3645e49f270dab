package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrGraphCycle,
		ErrUnknownCapability,
		ErrDuplicateCapability,
		ErrCapabilityNotFound,
		ErrPhaseOrdering,
		ErrTaskTimeout,
		ErrWorkerInvocation,
		ErrRetryBudgetExhausted,
		ErrInvalidTransition,
		ErrGoalEmpty,
		ErrRunNotFound,
		ErrRunNotTerminal,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, stderrors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestWrap_PreservesErrorChain(t *testing.T) {
	wrapped := Wrap(ErrGraphCycle, "failed to build run")

	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, ErrGraphCycle))
	assert.Contains(t, wrapped.Error(), "failed to build run")
	assert.Contains(t, wrapped.Error(), ErrGraphCycle.Error())
}

func TestWrap_NilInput(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
}

func TestWrapf_FormatsContext(t *testing.T) {
	wrapped := Wrapf(ErrCapabilityNotFound, "failed to resolve %q", "review")

	require.Error(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, ErrCapabilityNotFound))
	assert.Contains(t, wrapped.Error(), `failed to resolve "review"`)
}

func TestWrapf_NilInput(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestWrap_DoubleWrap(t *testing.T) {
	inner := fmt.Errorf("%w: task develop-1 -> review-1 -> develop-1", ErrGraphCycle)
	outer := Wrap(inner, "goal rejected")

	assert.True(t, stderrors.Is(outer, ErrGraphCycle))
	assert.Contains(t, outer.Error(), "develop-1 -> review-1 -> develop-1")
}
