package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  constants.TaskStatus
		to    constants.TaskStatus
		valid bool
	}{
		{name: "pending to ready", from: constants.TaskStatusPending, to: constants.TaskStatusReady, valid: true},
		{name: "pending to blocked", from: constants.TaskStatusPending, to: constants.TaskStatusBlocked, valid: true},
		{name: "ready to dispatched", from: constants.TaskStatusReady, to: constants.TaskStatusDispatched, valid: true},
		{name: "dispatched to completed", from: constants.TaskStatusDispatched, to: constants.TaskStatusCompleted, valid: true},
		{name: "dispatched to failed", from: constants.TaskStatusDispatched, to: constants.TaskStatusFailed, valid: true},
		{name: "failed reopened", from: constants.TaskStatusFailed, to: constants.TaskStatusPending, valid: true},
		{name: "pending to dispatched skips ready", from: constants.TaskStatusPending, to: constants.TaskStatusDispatched, valid: false},
		{name: "completed is terminal", from: constants.TaskStatusCompleted, to: constants.TaskStatusPending, valid: false},
		{name: "blocked is terminal", from: constants.TaskStatusBlocked, to: constants.TaskStatusReady, valid: false},
		{name: "same status", from: constants.TaskStatusReady, to: constants.TaskStatusReady, valid: false},
		{name: "dispatched to blocked", from: constants.TaskStatusDispatched, to: constants.TaskStatusBlocked, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTransition(tt.from, tt.to))
		})
	}
}

func TestTransitionTask_Timestamps(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	task := &domain.Task{ID: "develop-1", Status: constants.TaskStatusReady}

	require.NoError(t, transitionTask(task, constants.TaskStatusDispatched, now))
	assert.Equal(t, 1, task.Attempts)
	require.NotNil(t, task.StartedAt)
	assert.Equal(t, now, *task.StartedAt)

	require.NoError(t, transitionTask(task, constants.TaskStatusFailed, now))
	require.NotNil(t, task.CompletedAt)

	// Retry controller re-opens; completion stamp clears.
	require.NoError(t, transitionTask(task, constants.TaskStatusPending, now))
	assert.Nil(t, task.CompletedAt)

	require.NoError(t, transitionTask(task, constants.TaskStatusReady, now))
	require.NoError(t, transitionTask(task, constants.TaskStatusDispatched, now))
	assert.Equal(t, 2, task.Attempts)
}

func TestTransitionTask_Invalid(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	err := transitionTask(nil, constants.TaskStatusReady, now)
	require.ErrorIs(t, err, conductorerrors.ErrInvalidTransition)

	task := &domain.Task{ID: "develop-1", Status: constants.TaskStatusCompleted}
	err = transitionTask(task, constants.TaskStatusPending, now)
	require.ErrorIs(t, err, conductorerrors.ErrInvalidTransition)
	assert.Equal(t, constants.TaskStatusCompleted, task.Status)
}

func TestTransitionRun_AuditTrail(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	run := &domain.WorkflowRun{ID: "run-1", Status: constants.RunStatusPending}

	require.NoError(t, transitionRun(run, constants.RunStatusRunning, "execution started", now))
	require.NoError(t, transitionRun(run, constants.RunStatusSucceeded, "all phase gates passed", now))

	require.Len(t, run.Transitions, 2)
	assert.Equal(t, constants.RunStatusPending, run.Transitions[0].From)
	assert.Equal(t, constants.RunStatusRunning, run.Transitions[0].To)
	assert.Equal(t, "execution started", run.Transitions[0].Reason)
	assert.Equal(t, constants.RunStatusRunning, run.Transitions[1].From)
	assert.Equal(t, constants.RunStatusSucceeded, run.Transitions[1].To)
	require.NotNil(t, run.CompletedAt)
}

func TestTransitionRun_TerminalIsFinal(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	run := &domain.WorkflowRun{ID: "run-1", Status: constants.RunStatusFailed}

	err := transitionRun(run, constants.RunStatusRunning, "", now)
	require.ErrorIs(t, err, conductorerrors.ErrInvalidTransition)
}
