package engine

import (
	"time"

	"github.com/mrz1836/conductor/internal/domain"
)

// Snapshot returns a deep copy of the engine's current run for side-effect
// free status queries. Safe to call concurrently with Run; returns nil
// before Run has been handed a run.
func (e *Engine) Snapshot() *domain.WorkflowRun {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.run == nil {
		return nil
	}
	return cloneRun(e.run)
}

// cloneRun deep-copies a run so the caller can read it without racing the
// scheduler's mutation. Worker artifacts are opaque and shared by reference;
// the engine never mutates an artifact after recording it.
func cloneRun(run *domain.WorkflowRun) *domain.WorkflowRun {
	out := *run

	out.Phases = append([]domain.Phase(nil), run.Phases...)
	out.Gates = cloneGates(run.Gates)
	out.FindingLog = append([]domain.Finding(nil), run.FindingLog...)
	out.Transitions = append([]domain.Transition(nil), run.Transitions...)
	out.CompletedAt = cloneTime(run.CompletedAt)

	out.GateThresholds = make(map[domain.Phase]domain.Severity, len(run.GateThresholds))
	for p, s := range run.GateThresholds {
		out.GateThresholds[p] = s
	}

	out.Tasks = make([]*domain.Task, len(run.Tasks))
	for i, t := range run.Tasks {
		out.Tasks[i] = cloneTask(t)
	}

	return &out
}

func cloneTask(t *domain.Task) *domain.Task {
	out := *t
	out.DependsOn = append([]string(nil), t.DependsOn...)
	out.Remediation = append([]domain.Finding(nil), t.Remediation...)
	out.StartedAt = cloneTime(t.StartedAt)
	out.CompletedAt = cloneTime(t.CompletedAt)

	if t.Input != nil {
		out.Input = make(map[string]any, len(t.Input))
		for k, v := range t.Input {
			out.Input[k] = v
		}
	}
	if t.Result != nil {
		res := *t.Result
		res.Findings = append([]domain.Finding(nil), t.Result.Findings...)
		out.Result = &res
	}
	return &out
}

func cloneGates(gates []domain.Gate) []domain.Gate {
	if gates == nil {
		return nil
	}
	out := make([]domain.Gate, len(gates))
	for i, g := range gates {
		out[i] = g
		out[i].Blocking = append([]domain.Finding(nil), g.Blocking...)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
