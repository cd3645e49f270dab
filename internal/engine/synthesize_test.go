package engine

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/worker"
)

func TestSynthesize_NonTerminalRejected(t *testing.T) {
	_, err := Synthesize(nil)
	require.ErrorIs(t, err, conductorerrors.ErrInvalidArgument)

	_, err = Synthesize(&domain.WorkflowRun{ID: "r", Status: constants.RunStatusRunning})
	require.ErrorIs(t, err, conductorerrors.ErrRunNotTerminal)
}

func TestSynthesize_LastSuccessfulArtifactWins(t *testing.T) {
	run := &domain.WorkflowRun{
		ID:     "run-1",
		Goal:   "release",
		Status: constants.RunStatusSucceeded,
		Tasks: []*domain.Task{
			{
				ID: "develop-1", Capability: "develop",
				Status: constants.TaskStatusCompleted,
				Result: &domain.TaskResult{Success: true, Artifact: "v1"},
			},
			{
				ID: "develop-r1", Capability: "develop",
				Status: constants.TaskStatusCompleted,
				Result: &domain.TaskResult{Success: true, Artifact: "v2"},
			},
			{
				ID: "review-1", Capability: "review",
				Status: constants.TaskStatusFailed,
				Result: &domain.TaskResult{Success: false, Artifact: "ignored"},
			},
		},
	}

	d, err := Synthesize(run)
	require.NoError(t, err)
	assert.Equal(t, "run-1", d.RunID)
	assert.Equal(t, "release", d.Goal)
	assert.Equal(t, "v2", d.Artifacts["develop"])
	assert.NotContains(t, d.Artifacts, "review")
	assert.Equal(t, constants.RunStatusSucceeded, d.FinalStatus)
}

// Synthesizing twice from the same terminal run yields identical output.
func TestSynthesize_Deterministic(t *testing.T) {
	run := &domain.WorkflowRun{
		ID:     "run-1",
		Status: constants.RunStatusFailed,
		Gates: []domain.Gate{
			{Phase: domain.PhaseReview, Passed: false, Blocking: []domain.Finding{{Severity: domain.SeverityHigh}}},
		},
		FindingLog: []domain.Finding{{Severity: domain.SeverityHigh, TaskID: "review-1"}},
	}

	first, err := Synthesize(run)
	require.NoError(t, err)
	second, err := Synthesize(run)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// The deliverable's finding history must round-trip the chronological
// execution record exactly: no loss, no duplication, original order.
func TestSynthesize_FindingHistoryRoundTrip(t *testing.T) {
	var reviewCalls atomic.Int32
	reg := newRegistry(t,
		capability{
			desc: domain.CapabilityDescriptor{Name: "develop", Phase: domain.PhaseDevelopment, ConcurrencySafe: true, Retriable: true},
			fn:   succeedWith("manifest"),
		},
		capability{
			desc: domain.CapabilityDescriptor{Name: "review", Phase: domain.PhaseReview, ConcurrencySafe: true, Retriable: true},
			fn: func(_ context.Context, _ worker.Input) (*domain.TaskResult, error) {
				n := reviewCalls.Add(1)
				sev := domain.SeverityCritical
				if n > 1 {
					sev = domain.SeverityLow
				}
				return &domain.TaskResult{Success: true, Findings: []domain.Finding{{
					Severity:    sev,
					Capability:  "develop",
					Description: "issue",
				}}}, nil
			},
		},
	)

	run := buildRun(t, reg, &domain.GoalDescriptor{
		Name:                 "audit",
		RequiredCapabilities: []string{"develop", "review"},
		RetryBudget:          1,
	})

	require.NoError(t, New(reg).Run(context.Background(), run))
	require.Equal(t, constants.RunStatusSucceeded, run.Status)

	d, err := Synthesize(run)
	require.NoError(t, err)

	// Two review invocations, one finding each; the remediated critical
	// finding stays in the history alongside the low one that passed.
	require.Len(t, d.FindingHistory, 2)
	assert.Equal(t, run.FindingLog, d.FindingHistory)
	assert.Equal(t, domain.SeverityCritical, d.FindingHistory[0].Severity)
	assert.Equal(t, domain.SeverityLow, d.FindingHistory[1].Severity)
	assert.True(t, !d.FindingHistory[1].ReportedAt.Before(d.FindingHistory[0].ReportedAt))

	// Gate history is chronological and complete.
	require.Len(t, d.GateHistory, 3)
	assert.True(t, d.GateHistory[0].Passed)
	assert.False(t, d.GateHistory[1].Passed)
	assert.True(t, d.GateHistory[2].Passed)

	// Mutating the deliverable never reaches back into the run.
	d.FindingHistory[0].Severity = domain.SeverityLow
	assert.Equal(t, domain.SeverityCritical, run.FindingLog[0].Severity)
}
