// Package graph provides the task graph builder: it turns a goal descriptor
// into a WorkflowRun containing a validated, acyclic, phase-monotone task
// graph.
//
// The builder never invokes workers and has no side effects beyond the
// returned run. Structural errors (cycles, unknown capabilities, forward
// cross-phase dependencies) abort before any task could be dispatched.
package graph

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/registry"
)

// Defaults supplies builder-level fallbacks taken from configuration.
type Defaults struct {
	// RetryBudget applies when the goal does not set one.
	RetryBudget int

	// GateThresholds applies per phase unless the goal overrides it.
	GateThresholds map[domain.Phase]domain.Severity
}

// Builder constructs WorkflowRuns from goal descriptors.
type Builder struct {
	registry *registry.Registry
	clock    clock.Clock
	defaults Defaults
}

// NewBuilder creates a Builder backed by the given capability registry.
func NewBuilder(reg *registry.Registry, clk clock.Clock, defaults Defaults) *Builder {
	if defaults.RetryBudget <= 0 {
		defaults.RetryBudget = constants.DefaultRetryBudget
	}
	return &Builder{
		registry: reg,
		clock:    clk,
		defaults: defaults,
	}
}

// Build produces a WorkflowRun with one task per required capability.
//
// Phase assignment defaults to each capability's descriptor phase; the
// goal's phase_overrides win. Task enumeration order follows the goal's
// required_capabilities order and is the scheduler's dispatch tie-break,
// so it must be stable.
//
// Returns ErrGoalEmpty, ErrUnknownCapability, ErrUnknownPhase,
// ErrUnknownSeverity, ErrPhaseOrdering, or ErrGraphCycle on invalid input.
func (b *Builder) Build(goal *domain.GoalDescriptor) (*domain.WorkflowRun, error) {
	if goal == nil || len(goal.RequiredCapabilities) == 0 {
		return nil, conductorerrors.ErrGoalEmpty
	}

	tasks, err := b.buildTasks(goal)
	if err != nil {
		return nil, err
	}
	if err := b.applyHints(goal, tasks); err != nil {
		return nil, err
	}
	if err := validateStructure(tasks); err != nil {
		return nil, err
	}

	thresholds, err := b.mergeThresholds(goal)
	if err != nil {
		return nil, err
	}

	budget := goal.RetryBudget
	if budget <= 0 {
		budget = b.defaults.RetryBudget
	}

	now := b.clock.Now().UTC()
	run := &domain.WorkflowRun{
		ID:                 uuid.NewString(),
		Goal:               goal.Name,
		Phases:             phasesPresent(tasks),
		Tasks:              tasks,
		GateThresholds:     thresholds,
		RetryBudget:        budget,
		RetryBudgetInitial: budget,
		Status:             constants.RunStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
		SchemaVersion:      constants.RunSchemaVersion,
	}
	return run, nil
}

// buildTasks creates one task per required capability, resolving each
// against the registry and assigning its phase.
func (b *Builder) buildTasks(goal *domain.GoalDescriptor) ([]*domain.Task, error) {
	now := b.clock.Now().UTC()
	ordinals := make(map[string]int)
	tasks := make([]*domain.Task, 0, len(goal.RequiredCapabilities))

	for _, capName := range goal.RequiredCapabilities {
		entry, err := b.registry.Resolve(capName)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", conductorerrors.ErrUnknownCapability, capName)
		}

		phase := entry.Descriptor.Phase
		if override, ok := goal.PhaseOverrides[capName]; ok {
			if !override.IsValid() {
				return nil, fmt.Errorf("%w: phase override %q for capability %q",
					conductorerrors.ErrUnknownPhase, override, capName)
			}
			phase = override
		}

		ordinals[capName]++
		tasks = append(tasks, &domain.Task{
			ID:         fmt.Sprintf("%s-%d", capName, ordinals[capName]),
			Capability: capName,
			Phase:      phase,
			Input:      goal.Inputs[capName],
			Status:     constants.TaskStatusPending,
			CreatedAt:  now,
		})
	}
	return tasks, nil
}

// applyHints turns capability-level dependency hints into task-level edges.
// Hints are applied in order, appending dependencies stably.
func (b *Builder) applyHints(goal *domain.GoalDescriptor, tasks []*domain.Task) error {
	byCapability := make(map[string][]*domain.Task)
	for _, t := range tasks {
		byCapability[t.Capability] = append(byCapability[t.Capability], t)
	}

	for _, hint := range goal.DependencyHints {
		dependents, ok := byCapability[hint.Capability]
		if !ok {
			return fmt.Errorf("%w: dependency hint references %q",
				conductorerrors.ErrUnknownCapability, hint.Capability)
		}
		prereqs, ok := byCapability[hint.DependsOn]
		if !ok {
			return fmt.Errorf("%w: dependency hint references %q",
				conductorerrors.ErrUnknownCapability, hint.DependsOn)
		}

		for _, dep := range dependents {
			for _, pre := range prereqs {
				if !contains(dep.DependsOn, pre.ID) {
					dep.DependsOn = append(dep.DependsOn, pre.ID)
				}
			}
		}
	}
	return nil
}

// validateStructure enforces phase monotonicity and acyclicity.
func validateStructure(tasks []*domain.Task) error {
	byID := make(map[string]*domain.Task, len(tasks))
	ids := make([]string, 0, len(tasks))
	edges := make(map[string][]string, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
		edges[t.ID] = t.DependsOn
	}

	// Dependencies may only point to the same or an earlier phase.
	for _, t := range tasks {
		for _, depID := range t.DependsOn {
			dep, ok := byID[depID]
			if !ok {
				return fmt.Errorf("%w: task %s depends on unknown task %s",
					conductorerrors.ErrInvalidArgument, t.ID, depID)
			}
			if t.Phase.Before(dep.Phase) {
				return fmt.Errorf("%w: task %s (%s) depends on %s (%s)",
					conductorerrors.ErrPhaseOrdering, t.ID, t.Phase, dep.ID, dep.Phase)
			}
		}
	}

	if cyclePath := validateAcyclic(ids, edges); cyclePath != nil {
		return fmt.Errorf("%w: %s", conductorerrors.ErrGraphCycle, strings.Join(cyclePath, " -> "))
	}
	return nil
}

// mergeThresholds overlays goal thresholds onto the configured defaults.
func (b *Builder) mergeThresholds(goal *domain.GoalDescriptor) (map[domain.Phase]domain.Severity, error) {
	merged := make(map[domain.Phase]domain.Severity, len(b.defaults.GateThresholds)+len(goal.GateThresholds))
	for p, s := range b.defaults.GateThresholds {
		merged[p] = s
	}
	for p, s := range goal.GateThresholds {
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: gate threshold phase %q", conductorerrors.ErrUnknownPhase, p)
		}
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: gate threshold %q for phase %q",
				conductorerrors.ErrUnknownSeverity, s, p)
		}
		merged[p] = s
	}
	return merged, nil
}

// phasesPresent returns the distinct phases of the tasks, in canonical order.
func phasesPresent(tasks []*domain.Task) []domain.Phase {
	present := make(map[domain.Phase]bool, len(tasks))
	for _, t := range tasks {
		present[t.Phase] = true
	}

	var out []domain.Phase
	for _, p := range domain.CanonicalPhases() {
		if present[p] {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
