package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/registry"
	"github.com/mrz1836/conductor/internal/worker"
)

func noopWorker() worker.Worker {
	return worker.Func(func(_ context.Context, _ worker.Input) (*domain.TaskResult, error) {
		return &domain.TaskResult{Success: true}, nil
	})
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg := registry.New()
	caps := []domain.CapabilityDescriptor{
		{Name: "plan", Phase: domain.PhaseDesign},
		{Name: "develop", Phase: domain.PhaseDevelopment},
		{Name: "review", Phase: domain.PhaseReview},
		{Name: "audit", Phase: domain.PhaseSecurity},
		{Name: "ship", Phase: domain.PhaseDeployment},
	}
	for _, c := range caps {
		require.NoError(t, reg.Register(c, noopWorker()))
	}
	return reg
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(testRegistry(t), clock.Fixed(time.Unix(1700000000, 0)), Defaults{})
}

func TestBuild_TaskPerCapability(t *testing.T) {
	b := testBuilder(t)

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "release",
		RequiredCapabilities: []string{"plan", "develop", "review"},
		DependencyHints: []domain.DependencyHint{
			{Capability: "develop", DependsOn: "plan"},
			{Capability: "review", DependsOn: "develop"},
		},
	})
	require.NoError(t, err)
	require.Len(t, run.Tasks, 3)

	assert.Equal(t, "plan-1", run.Tasks[0].ID)
	assert.Equal(t, "develop-1", run.Tasks[1].ID)
	assert.Equal(t, "review-1", run.Tasks[2].ID)
	assert.Equal(t, []string{"plan-1"}, run.Tasks[1].DependsOn)
	assert.Equal(t, []string{"develop-1"}, run.Tasks[2].DependsOn)

	assert.Equal(t, constants.RunStatusPending, run.Status)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, constants.RunSchemaVersion, run.SchemaVersion)

	for _, task := range run.Tasks {
		assert.Equal(t, constants.TaskStatusPending, task.Status)
		assert.Zero(t, task.Attempts)
	}
}

func TestBuild_EmptyGoal(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Build(nil)
	require.ErrorIs(t, err, conductorerrors.ErrGoalEmpty)

	_, err = b.Build(&domain.GoalDescriptor{Name: "empty"})
	require.ErrorIs(t, err, conductorerrors.ErrGoalEmpty)
}

func TestBuild_UnknownCapability(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Build(&domain.GoalDescriptor{
		Name:                 "bad",
		RequiredCapabilities: []string{"plan", "teleport"},
	})
	require.ErrorIs(t, err, conductorerrors.ErrUnknownCapability)
	assert.Contains(t, err.Error(), "teleport")
}

func TestBuild_CycleReported(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Build(&domain.GoalDescriptor{
		Name:                 "loop",
		RequiredCapabilities: []string{"plan", "develop"},
		PhaseOverrides:       map[string]domain.Phase{"develop": domain.PhaseDesign},
		DependencyHints: []domain.DependencyHint{
			{Capability: "develop", DependsOn: "plan"},
			{Capability: "plan", DependsOn: "develop"},
		},
	})
	require.ErrorIs(t, err, conductorerrors.ErrGraphCycle)
	assert.Contains(t, err.Error(), "plan-1")
	assert.Contains(t, err.Error(), "develop-1")
}

func TestBuild_PhaseOrdering(t *testing.T) {
	b := testBuilder(t)

	// A design task depending on a review task crosses phases backward.
	_, err := b.Build(&domain.GoalDescriptor{
		Name:                 "backward",
		RequiredCapabilities: []string{"plan", "review"},
		DependencyHints: []domain.DependencyHint{
			{Capability: "plan", DependsOn: "review"},
		},
	})
	require.ErrorIs(t, err, conductorerrors.ErrPhaseOrdering)
}

func TestBuild_PhaseOverride(t *testing.T) {
	b := testBuilder(t)

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "override",
		RequiredCapabilities: []string{"review"},
		PhaseOverrides:       map[string]domain.Phase{"review": domain.PhaseSecurity},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSecurity, run.Tasks[0].Phase)
	assert.Equal(t, []domain.Phase{domain.PhaseSecurity}, run.Phases)
}

func TestBuild_InvalidPhaseOverride(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Build(&domain.GoalDescriptor{
		Name:                 "override",
		RequiredCapabilities: []string{"review"},
		PhaseOverrides:       map[string]domain.Phase{"review": "triage"},
	})
	require.ErrorIs(t, err, conductorerrors.ErrUnknownPhase)
}

func TestBuild_DuplicateCapabilityOrdinals(t *testing.T) {
	b := testBuilder(t)

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "twice",
		RequiredCapabilities: []string{"develop", "develop"},
	})
	require.NoError(t, err)
	require.Len(t, run.Tasks, 2)
	assert.Equal(t, "develop-1", run.Tasks[0].ID)
	assert.Equal(t, "develop-2", run.Tasks[1].ID)
}

func TestBuild_PhasesCanonicalOrder(t *testing.T) {
	b := testBuilder(t)

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "ordered",
		RequiredCapabilities: []string{"ship", "plan", "audit"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Phase{
		domain.PhaseDesign,
		domain.PhaseSecurity,
		domain.PhaseDeployment,
	}, run.Phases)
}

func TestBuild_ThresholdsAndBudget(t *testing.T) {
	reg := testRegistry(t)
	b := NewBuilder(reg, clock.Fixed(time.Unix(1700000000, 0)), Defaults{
		RetryBudget: 5,
		GateThresholds: map[domain.Phase]domain.Severity{
			domain.PhaseSecurity: domain.SeverityLow,
		},
	})

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "thresholds",
		RequiredCapabilities: []string{"audit"},
		GateThresholds: map[domain.Phase]domain.Severity{
			domain.PhaseDesign: domain.SeverityMedium,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityLow, run.GateThresholds[domain.PhaseSecurity])
	assert.Equal(t, domain.SeverityMedium, run.GateThresholds[domain.PhaseDesign])
	assert.Equal(t, 5, run.RetryBudget)
	assert.Equal(t, 5, run.RetryBudgetInitial)

	run2, err := b.Build(&domain.GoalDescriptor{
		Name:                 "goal-budget",
		RequiredCapabilities: []string{"audit"},
		RetryBudget:          1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, run2.RetryBudget)
}

func TestBuild_InvalidGoalThreshold(t *testing.T) {
	b := testBuilder(t)

	_, err := b.Build(&domain.GoalDescriptor{
		Name:                 "bad-threshold",
		RequiredCapabilities: []string{"audit"},
		GateThresholds:       map[domain.Phase]domain.Severity{domain.PhaseSecurity: "fatal"},
	})
	require.ErrorIs(t, err, conductorerrors.ErrUnknownSeverity)
}

func TestBuild_DefaultBudgetApplied(t *testing.T) {
	b := testBuilder(t)

	run, err := b.Build(&domain.GoalDescriptor{
		Name:                 "default-budget",
		RequiredCapabilities: []string{"plan"},
	})
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultRetryBudget, run.RetryBudget)
}
