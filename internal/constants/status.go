package constants

// TaskStatus represents the state of a task in the Conductor state machine.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
// These follow the task state machine:
//
//	Pending → Ready
//	Ready → Dispatched
//	Dispatched → Completed, Failed
//	Failed → Pending (retry controller only)
//	Pending, Ready → Blocked (ancestor failed unrecoverably)
const (
	// TaskStatusPending indicates a task is waiting on unmet dependencies
	// or on its phase being admitted.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusReady indicates every dependency reached terminal success
	// and the task is eligible for dispatch.
	TaskStatusReady TaskStatus = "ready"

	// TaskStatusDispatched indicates the task has been handed to its
	// specialist worker and is in flight.
	TaskStatusDispatched TaskStatus = "dispatched"

	// TaskStatusCompleted indicates the worker finished successfully.
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed indicates the worker reported failure, faulted, or
	// timed out. Retriable capabilities may be re-dispatched by the retry
	// controller; otherwise the status is terminal.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusBlocked indicates a transitive dependency failed
	// unrecoverably. The task was never dispatched and never will be.
	TaskStatusBlocked TaskStatus = "blocked"
)

// String returns the string representation of the TaskStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s TaskStatus) String() string {
	return string(s)
}

// RunStatus represents the state of a WorkflowRun.
// Status values use snake_case for JSON serialization compatibility.
type RunStatus string

// Run status constants define the valid states a workflow run can be in.
const (
	// RunStatusPending indicates the run was built but execution has not started.
	RunStatusPending RunStatus = "pending"

	// RunStatusRunning indicates the scheduler is actively walking the graph.
	RunStatusRunning RunStatus = "running"

	// RunStatusSucceeded indicates every phase gate passed. Terminal.
	RunStatusSucceeded RunStatus = "succeeded"

	// RunStatusFailed indicates the retry budget was exhausted with blocking
	// findings outstanding, or a task failed unrecoverably. Terminal.
	RunStatusFailed RunStatus = "failed"

	// RunStatusAborted indicates execution was canceled before reaching a
	// verdict. In-flight tasks were allowed to finish. Terminal.
	RunStatusAborted RunStatus = "aborted"
)

// String returns the string representation of the RunStatus.
// This implements fmt.Stringer for convenient logging and debugging.
func (s RunStatus) String() string {
	return string(s)
}
