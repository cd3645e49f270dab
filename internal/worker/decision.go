package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// Decision is a human-in-the-loop worker: a suspension point where the
// engine requests disambiguating input from the operator before dependent
// tasks can become ready. It is modeled as an ordinary capability so the
// scheduler needs no special case.
//
// The task input drives the prompt:
//
//	question: the prompt title (required)
//	options:  list of choices; when absent a free-form input is shown
//
// The produced artifact is {"decision": <answer>}.
type Decision struct {
	// isTerminal is swapped out in tests.
	isTerminal func() bool
}

// NewDecision creates a decision worker.
func NewDecision() *Decision {
	return &Decision{
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Invoke implements Worker by prompting the operator.
// Fails with ErrInteractiveRequired when stdin is not a terminal.
func (d *Decision) Invoke(ctx context.Context, in Input) (*domain.TaskResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	question, _ := in.Task.Input["question"].(string)
	if question == "" {
		question = fmt.Sprintf("Decision required for task %s", in.Task.ID)
	}

	// Pre-resolved decisions (e.g. --decide flags, replayed runs) skip the prompt.
	if answer, ok := in.Task.Input["decision"].(string); ok && answer != "" {
		return decisionResult(answer), nil
	}

	if !d.isTerminal() {
		return nil, fmt.Errorf("%w: task %s needs a decision (%s)",
			conductorerrors.ErrInteractiveRequired, in.Task.ID, question)
	}

	answer, err := d.prompt(question, stringSlice(in.Task.Input["options"]))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", conductorerrors.ErrWorkerInvocation, err)
	}
	return decisionResult(answer), nil
}

// prompt shows a select form when options exist, a free-form input otherwise.
func (d *Decision) prompt(question string, options []string) (string, error) {
	var answer string

	var field huh.Field
	if len(options) > 0 {
		opts := make([]huh.Option[string], 0, len(options))
		for _, o := range options {
			opts = append(opts, huh.NewOption(o, o))
		}
		field = huh.NewSelect[string]().
			Title(question).
			Options(opts...).
			Value(&answer)
	} else {
		field = huh.NewInput().
			Title(question).
			Value(&answer).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("an answer is required: %w", conductorerrors.ErrInvalidArgument)
				}
				return nil
			})
	}

	form := huh.NewForm(huh.NewGroup(field))
	if err := form.Run(); err != nil {
		return "", err
	}
	return answer, nil
}

func decisionResult(answer string) *domain.TaskResult {
	return &domain.TaskResult{
		Artifact: map[string]any{"decision": answer},
		Success:  true,
	}
}

// stringSlice coerces a YAML/JSON decoded value into a string slice.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
