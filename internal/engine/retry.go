package engine

import (
	"fmt"
	"time"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// reconcile responds to a failed gate by injecting one remediation cycle
// into the run: one remediation task per capability held responsible for a
// blocking finding, plus one re-verification task per capability that
// reported a blocking finding against another capability. All injected
// tasks live in the gate's phase, so the phase barrier re-enters dispatch
// and re-evaluates the gate once they settle.
//
// The retry budget is decremented once per cycle, never per finding, and
// never restored. When the budget is already exhausted, reconcile returns
// ErrRetryBudgetExhausted carrying the unresolved finding count; the caller
// terminates the run as failed with the full finding history intact.
func (e *Engine) reconcile(run *domain.WorkflowRun, gate domain.Gate, now time.Time) error {
	if run.RetryBudget <= 0 {
		return fmt.Errorf("%w: %d blocking finding(s) unresolved in phase %s",
			conductorerrors.ErrRetryBudgetExhausted, len(gate.Blocking), gate.Phase)
	}
	run.RetryBudget--
	cycle := run.RetryBudgetInitial - run.RetryBudget

	// Cycle tasks are shared: a capability that is both responsible for one
	// finding and the reporter of another gets a single task serving both.
	cycleTasks := make(map[string]*domain.Task)

	taskFor := func(capability string) *domain.Task {
		if t, ok := cycleTasks[capability]; ok {
			return t
		}
		t := &domain.Task{
			ID:         fmt.Sprintf("%s-r%d", capability, cycle),
			Capability: capability,
			Phase:      gate.Phase,
			Status:     constants.TaskStatusPending,
			CreatedAt:  now,
		}
		if prev := latestTaskForCapability(run, capability); prev != nil {
			t.Input = prev.Input
		}
		cycleTasks[capability] = t
		run.Tasks = append(run.Tasks, t)
		return t
	}

	for _, finding := range gate.Blocking {
		responsible := responsibleCapability(run, finding)

		// A failed retriable task is re-opened in place rather than shadowed
		// by a new task, so its next attempt supersedes the failure.
		if prev := latestTaskForCapability(run, responsible); prev != nil &&
			prev.Status == constants.TaskStatusFailed && e.isRetriable(responsible) {
			if _, reopened := cycleTasks[responsible]; !reopened {
				if err := transitionTask(prev, constants.TaskStatusPending, now); err != nil {
					return err
				}
				prev.Remediation = nil
				cycleTasks[responsible] = prev
			}
			remTask := cycleTasks[responsible]
			remTask.Remediation = append(remTask.Remediation, finding)
			addReVerification(run, finding, remTask, taskFor)
			continue
		}

		remTask := taskFor(responsible)
		remTask.Remediation = append(remTask.Remediation, finding)
		if origin := run.Task(finding.TaskID); origin != nil && origin.Succeeded() &&
			!contains(remTask.DependsOn, origin.ID) && origin.ID != remTask.ID {
			remTask.DependsOn = append(remTask.DependsOn, origin.ID)
		}

		addReVerification(run, finding, remTask, taskFor)
	}

	e.logger.Info().
		Str("run_id", run.ID).
		Str("phase", gate.Phase.String()).
		Int("cycle", cycle).
		Int("budget_remaining", run.RetryBudget).
		Int("blocking_findings", len(gate.Blocking)).
		Msg("remediation cycle injected")

	return nil
}

// addReVerification ensures the capability that reported a finding against
// another capability runs again after the remediation task, so the next
// gate evaluation judges fresh findings instead of the remediated ones.
func addReVerification(run *domain.WorkflowRun, finding domain.Finding,
	remTask *domain.Task, taskFor func(string) *domain.Task) {
	reporter := run.Task(finding.TaskID)
	if reporter == nil || reporter.Capability == remTask.Capability {
		return
	}

	verify := taskFor(reporter.Capability)
	if !contains(verify.DependsOn, remTask.ID) && verify.ID != remTask.ID {
		verify.DependsOn = append(verify.DependsOn, remTask.ID)
	}
}

// responsibleCapability resolves which capability must remediate a finding:
// the finding's explicit capability attribution, or the reporting task's own
// capability when unattributed.
func responsibleCapability(run *domain.WorkflowRun, finding domain.Finding) string {
	if finding.Capability != "" {
		return finding.Capability
	}
	if reporter := run.Task(finding.TaskID); reporter != nil {
		return reporter.Capability
	}
	return finding.TaskID
}

// latestTaskForCapability returns the most recently appended task for the
// capability, or nil.
func latestTaskForCapability(run *domain.WorkflowRun, capability string) *domain.Task {
	for i := len(run.Tasks) - 1; i >= 0; i-- {
		if run.Tasks[i].Capability == capability {
			return run.Tasks[i]
		}
	}
	return nil
}

// isRetriable reports whether the capability's idempotency class allows the
// engine to re-dispatch a failed task. Unknown capabilities are treated as
// non-retriable.
func (e *Engine) isRetriable(capability string) bool {
	entry, err := e.registry.Resolve(capability)
	if err != nil {
		return false
	}
	return entry.Descriptor.Retriable
}
