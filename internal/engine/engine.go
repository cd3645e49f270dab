package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/registry"
	"github.com/mrz1836/conductor/internal/worker"
)

// Engine walks a workflow run's task graph: it dispatches ready tasks to
// their capability workers under a bounded concurrency ceiling, enforces
// the phase barrier and gate verdicts, and drives remediation cycles until
// the run reaches a terminal status.
//
// All run mutation happens on the goroutine that called Run; worker results
// arrive over a channel. Snapshot is the only concurrent read path and takes
// a deep copy under the engine's lock. An Engine executes one run at a time.
type Engine struct {
	registry    *registry.Registry
	clock       clock.Clock
	logger      zerolog.Logger
	concurrency int

	mu  sync.RWMutex
	run *domain.WorkflowRun
	sem *semaphore.Weighted
}

// Option customizes an Engine.
type Option func(*Engine)

// WithConcurrency sets the maximum number of simultaneously dispatched tasks.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithClock overrides the engine's time source.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger sets the engine's structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine backed by the given capability registry.
func New(reg *registry.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:    reg,
		clock:       clock.RealClock{},
		logger:      zerolog.Nop(),
		concurrency: constants.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// invocation carries one worker result back to the scheduler goroutine.
type invocation struct {
	taskID          string
	concurrencySafe bool
	result          *domain.TaskResult
	err             error
	duration        time.Duration
	timedOut        bool
}

// phaseOutcome is the scheduler-internal verdict of one phase.
type phaseOutcome int

const (
	phasePassed phaseOutcome = iota
	phaseFailed
	phaseAborted
)

// Run executes the workflow run to a terminal status. Per-task failures are
// absorbed into the run (blocked propagation, remediation cycles, terminal
// failed status) and never surface as a returned error; the caller inspects
// run.Status and synthesizes the deliverable. The returned error is non-nil
// only for precondition violations.
//
// Context cancellation lets in-flight workers drain, then terminates the
// run as aborted.
func (e *Engine) Run(ctx context.Context, run *domain.WorkflowRun) error {
	if run == nil {
		return fmt.Errorf("%w: run is nil", conductorerrors.ErrInvalidArgument)
	}
	if run.Status != constants.RunStatusPending {
		return fmt.Errorf("%w: run %s is %s, want %s",
			conductorerrors.ErrInvalidArgument, run.ID, run.Status, constants.RunStatusPending)
	}

	e.mu.Lock()
	e.run = run
	e.sem = semaphore.NewWeighted(int64(e.concurrency))
	err := transitionRun(run, constants.RunStatusRunning, "execution started", e.clock.Now().UTC())
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.logger.Info().
		Str("run_id", run.ID).
		Str("goal", run.Goal).
		Int("tasks", len(run.Tasks)).
		Int("concurrency", e.concurrency).
		Msg("run started")

	for _, phase := range run.Phases {
		switch outcome, reason := e.runPhase(ctx, run, phase); outcome {
		case phaseAborted:
			e.finalize(run, constants.RunStatusAborted, reason)
			return nil
		case phaseFailed:
			e.finalize(run, constants.RunStatusFailed, reason)
			return nil
		case phasePassed:
		}
	}

	e.finalize(run, constants.RunStatusSucceeded, "all phase gates passed")
	return nil
}

// runPhase executes every task of the phase to the barrier, evaluates the
// gate, and loops through remediation cycles until the gate passes, the
// retry budget runs out, or an unrecoverable failure ends the run.
func (e *Engine) runPhase(ctx context.Context, run *domain.WorkflowRun, phase domain.Phase) (phaseOutcome, string) {
	for {
		if err := e.executePhase(ctx, run, phase); err != nil {
			return phaseAborted, fmt.Sprintf("canceled during phase %s", phase)
		}

		if failed := e.unrecoverableFailure(run, phase); failed != nil {
			return phaseFailed, fmt.Sprintf("task %s failed unrecoverably: %s", failed.ID, failed.Error)
		}

		e.mu.Lock()
		now := e.clock.Now().UTC()
		gate := EvaluateGate(phase, currentFindings(run, phase), run.Threshold(phase), now)
		run.Gates = append(run.Gates, gate)
		run.UpdatedAt = now
		e.mu.Unlock()

		e.logger.Info().
			Str("run_id", run.ID).
			Str("phase", phase.String()).
			Str("threshold", gate.Threshold.String()).
			Bool("passed", gate.Passed).
			Int("blocking_findings", len(gate.Blocking)).
			Msg("gate evaluated")

		if gate.Passed {
			return phasePassed, ""
		}

		e.mu.Lock()
		err := e.reconcile(run, gate, e.clock.Now().UTC())
		e.mu.Unlock()
		if err != nil {
			return phaseFailed, err.Error()
		}
	}
}

// executePhase runs the phase's dispatch loop until the barrier: no task in
// flight and none dispatchable. Tasks stalled on a failed retriable
// dependency are left non-terminal for the retry controller to resolve.
// Returns the context error when canceled, after draining in-flight workers.
func (e *Engine) executePhase(ctx context.Context, run *domain.WorkflowRun, phase domain.Phase) error {
	results := make(chan invocation, e.concurrency)
	inFlight := 0
	nonSafeInFlight := false

	for {
		e.mu.Lock()
		dispatched := e.promoteAndDispatch(ctx, run, phase, results, &inFlight, &nonSafeInFlight)
		e.mu.Unlock()

		if inFlight == 0 {
			if dispatched == 0 {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			for inFlight > 0 {
				inv := <-results
				e.record(run, inv, &inFlight, &nonSafeInFlight)
			}
			return ctx.Err()
		case inv := <-results:
			e.record(run, inv, &inFlight, &nonSafeInFlight)
		}
	}
}

// promoteAndDispatch advances the phase's tasks one step under the engine
// lock: pending tasks whose dependencies all succeeded become ready, tasks
// doomed by a blocked or unrecoverably failed ancestor become blocked, and
// ready tasks are dispatched in builder enumeration order up to the
// concurrency ceiling. Non-concurrency-safe tasks are serialized: at most
// one is in flight at any instant.
func (e *Engine) promoteAndDispatch(ctx context.Context, run *domain.WorkflowRun, phase domain.Phase,
	results chan<- invocation, inFlight *int, nonSafeInFlight *bool) int {
	now := e.clock.Now().UTC()

	for _, task := range run.Tasks {
		if task.Phase != phase || task.Status != constants.TaskStatusPending {
			continue
		}
		switch e.dependencyState(run, task) {
		case depsSatisfied:
			_ = transitionTask(task, constants.TaskStatusReady, now)
		case depsDoomed:
			_ = transitionTask(task, constants.TaskStatusBlocked, now)
			task.Error = "blocked: dependency failed unrecoverably"
			e.logger.Warn().
				Str("run_id", run.ID).
				Str("task_id", task.ID).
				Msg("task blocked")
		case depsWaiting:
		}
	}

	dispatched := 0
	for _, task := range run.Tasks {
		if task.Phase != phase || task.Status != constants.TaskStatusReady {
			continue
		}

		entry, err := e.registry.Resolve(task.Capability)
		if err != nil {
			// The builder validated capabilities; losing one mid-run means
			// the registry changed under us.
			_ = transitionTask(task, constants.TaskStatusDispatched, now)
			_ = transitionTask(task, constants.TaskStatusFailed, now)
			task.Error = conductorerrors.Wrapf(err, "resolving capability %q", task.Capability).Error()
			e.recordFailureFindings(run, task, now)
			continue
		}

		if !entry.Descriptor.ConcurrencySafe && *nonSafeInFlight {
			continue
		}
		if !e.sem.TryAcquire(1) {
			break
		}

		_ = transitionTask(task, constants.TaskStatusDispatched, now)
		run.UpdatedAt = now
		*inFlight++
		if !entry.Descriptor.ConcurrencySafe {
			*nonSafeInFlight = true
		}
		dispatched++

		e.logger.Debug().
			Str("run_id", run.ID).
			Str("task_id", task.ID).
			Str("capability", task.Capability).
			Int("attempt", task.Attempts).
			Msg("task dispatched")

		in := worker.Input{Task: *task, Remediation: task.Remediation}
		go e.invoke(ctx, in, entry, results)
	}
	return dispatched
}

// invoke runs one worker off the scheduler goroutine and reports the result
// over the channel. The per-capability timeout bounds the invocation.
func (e *Engine) invoke(ctx context.Context, in worker.Input, entry registry.Entry, results chan<- invocation) {
	invCtx := ctx
	if entry.Descriptor.Timeout > 0 {
		var cancel context.CancelFunc
		invCtx, cancel = context.WithTimeout(ctx, entry.Descriptor.Timeout)
		defer cancel()
	}

	start := e.clock.Now()
	res, err := entry.Worker.Invoke(invCtx, in)
	results <- invocation{
		taskID:          in.Task.ID,
		concurrencySafe: entry.Descriptor.ConcurrencySafe,
		result:          res,
		err:             err,
		duration:        e.clock.Now().Sub(start),
		timedOut:        errors.Is(invCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil,
	}
}

// record classifies one worker result and applies it to the run.
func (e *Engine) record(run *domain.WorkflowRun, inv invocation, inFlight *int, nonSafeInFlight *bool) {
	e.sem.Release(1)
	*inFlight--
	if !inv.concurrencySafe {
		*nonSafeInFlight = false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	task := run.Task(inv.taskID)
	if task == nil {
		return
	}
	now := e.clock.Now().UTC()

	task.Result = inv.result
	if task.Result == nil {
		task.Result = &domain.TaskResult{}
	}
	if task.Result.Duration == 0 {
		task.Result.Duration = inv.duration
	}

	switch {
	case inv.err == nil && inv.result != nil && inv.result.Success:
		task.Error = ""
		_ = transitionTask(task, constants.TaskStatusCompleted, now)

	case inv.err == nil:
		task.Result.Success = false
		task.Error = task.Result.Error
		if task.Error == "" {
			task.Error = "worker reported failure"
		}
		_ = transitionTask(task, constants.TaskStatusFailed, now)

	case inv.timedOut || errors.Is(inv.err, context.DeadlineExceeded):
		task.Result.Success = false
		task.Error = conductorerrors.Wrapf(conductorerrors.ErrTaskTimeout,
			"capability %q", task.Capability).Error()
		_ = transitionTask(task, constants.TaskStatusFailed, now)

	case errors.Is(inv.err, context.Canceled):
		task.Result.Success = false
		task.Error = inv.err.Error()
		_ = transitionTask(task, constants.TaskStatusFailed, now)
		run.UpdatedAt = now
		e.logTaskResult(run, task)
		return // aborting; no synthetic finding for canceled work

	default:
		task.Result.Success = false
		task.Error = conductorerrors.Wrap(conductorerrors.ErrWorkerInvocation, inv.err.Error()).Error()
		_ = transitionTask(task, constants.TaskStatusFailed, now)
	}

	e.recordFindings(run, task, now)
	if task.Status == constants.TaskStatusFailed {
		e.recordFailureFindings(run, task, now)
	}
	run.UpdatedAt = now
	e.logTaskResult(run, task)
}

// recordFindings stamps the attribution fields the worker leaves blank and
// appends the findings to the run's chronological log.
func (e *Engine) recordFindings(run *domain.WorkflowRun, task *domain.Task, now time.Time) {
	if task.Result == nil {
		return
	}
	for i := range task.Result.Findings {
		f := &task.Result.Findings[i]
		if f.TaskID == "" {
			f.TaskID = task.ID
		}
		if f.Phase == "" {
			f.Phase = task.Phase
		}
		if f.ReportedAt.IsZero() {
			f.ReportedAt = now
		}
		run.FindingLog = append(run.FindingLog, *f)
	}
}

// recordFailureFindings guarantees a failed task blocks its phase gate by
// synthesizing a critical finding unless the worker already reported one
// that meets the phase threshold. Sub-threshold findings alone must not let
// the gate pass over a failure: dependents of the failed task may still be
// non-terminal, and the retry controller is the only path that resolves them.
func (e *Engine) recordFailureFindings(run *domain.WorkflowRun, task *domain.Task, now time.Time) {
	if task.Result == nil {
		task.Result = &domain.TaskResult{}
	}
	threshold := run.Threshold(task.Phase)
	for _, f := range task.Result.Findings {
		if f.Severity.Meets(threshold) {
			return
		}
	}
	description := task.Error
	if description == "" {
		description = "task failed"
	}
	f := domain.Finding{
		Severity:    domain.SeverityCritical,
		TaskID:      task.ID,
		Capability:  task.Capability,
		Description: description,
		Phase:       task.Phase,
		ReportedAt:  now,
	}
	task.Result.Findings = append(task.Result.Findings, f)
	run.FindingLog = append(run.FindingLog, f)
}

func (e *Engine) logTaskResult(run *domain.WorkflowRun, task *domain.Task) {
	evt := e.logger.Info()
	if task.Status == constants.TaskStatusFailed {
		evt = e.logger.Warn()
	}
	evt.Str("run_id", run.ID).
		Str("task_id", task.ID).
		Str("capability", task.Capability).
		Str("status", task.Status.String()).
		Dur("duration", task.Result.Duration).
		Int("findings", len(task.Result.Findings)).
		Msg("task settled")
}

// depState classifies a pending task's dependency set.
type depState int

const (
	depsSatisfied depState = iota
	depsWaiting
	depsDoomed
)

// dependencyState inspects a task's dependencies: satisfied when all reached
// terminal success, doomed when an ancestor is blocked or unrecoverably
// failed, waiting otherwise. A failed retriable dependency counts as
// waiting, since a remediation cycle may re-open it.
func (e *Engine) dependencyState(run *domain.WorkflowRun, task *domain.Task) depState {
	state := depsSatisfied
	for _, depID := range task.DependsOn {
		dep := run.Task(depID)
		if dep == nil {
			return depsDoomed
		}
		switch dep.Status {
		case constants.TaskStatusCompleted:
		case constants.TaskStatusBlocked:
			return depsDoomed
		case constants.TaskStatusFailed:
			if !e.isRetriable(dep.Capability) {
				return depsDoomed
			}
			state = depsWaiting
		case constants.TaskStatusPending, constants.TaskStatusReady, constants.TaskStatusDispatched:
			state = depsWaiting
		}
	}
	return state
}

// unrecoverableFailure returns a failed task in the phase whose capability
// is non-retriable, or nil. Such a failure ends the run at the barrier
// regardless of the remaining retry budget.
func (e *Engine) unrecoverableFailure(run *domain.WorkflowRun, phase domain.Phase) *domain.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, task := range run.Tasks {
		if task.Phase == phase && task.Status == constants.TaskStatusFailed && !e.isRetriable(task.Capability) {
			return task
		}
	}
	return nil
}

// finalize moves the run to its terminal status, blocking every task the
// scheduler never got to dispatch.
func (e *Engine) finalize(run *domain.WorkflowRun, status constants.RunStatus, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now().UTC()
	if status != constants.RunStatusSucceeded {
		for _, task := range run.Tasks {
			switch task.Status {
			case constants.TaskStatusPending, constants.TaskStatusReady:
				_ = transitionTask(task, constants.TaskStatusBlocked, now)
				if task.Error == "" {
					task.Error = fmt.Sprintf("blocked: run %s", status)
				}
			case constants.TaskStatusDispatched, constants.TaskStatusCompleted,
				constants.TaskStatusFailed, constants.TaskStatusBlocked:
			}
		}
	}
	_ = transitionRun(run, status, reason, now)

	e.logger.Info().
		Str("run_id", run.ID).
		Str("status", status.String()).
		Str("reason", reason).
		Int("gates", len(run.Gates)).
		Int("findings", len(run.FindingLog)).
		Msg("run finished")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
