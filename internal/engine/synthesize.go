package engine

import (
	"fmt"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// Synthesize merges a terminal run into a single deliverable: the last
// successful artifact per capability, the chronological gate history, the
// complete finding history including findings remediated during retry
// cycles, and the terminal status.
//
// Synthesize never re-invokes workers and is deterministic: identical
// terminal runs always yield identical deliverables. Calling it on a
// non-terminal run returns ErrRunNotTerminal.
func Synthesize(run *domain.WorkflowRun) (*domain.Deliverable, error) {
	if run == nil {
		return nil, fmt.Errorf("%w: run is nil", conductorerrors.ErrInvalidArgument)
	}
	if !run.IsTerminal() {
		return nil, fmt.Errorf("%w: run %s is %s",
			conductorerrors.ErrRunNotTerminal, run.ID, run.Status)
	}

	artifacts := make(map[string]any)
	for _, task := range run.Tasks {
		if task.Succeeded() && task.Result != nil && task.Result.Artifact != nil {
			// Tasks are append-ordered, so later successes supersede.
			artifacts[task.Capability] = task.Result.Artifact
		}
	}

	return &domain.Deliverable{
		RunID:          run.ID,
		Goal:           run.Goal,
		Artifacts:      artifacts,
		GateHistory:    cloneGates(run.Gates),
		FindingHistory: append([]domain.Finding(nil), run.FindingLog...),
		FinalStatus:    run.Status,
	}, nil
}
