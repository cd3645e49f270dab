// Package cli provides the command-line interface for Conductor.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/domain"
	"github.com/mrz1836/conductor/internal/store"
)

// RunReader defines the archive operations the status command needs.
// Used for dependency injection in tests.
type RunReader interface {
	Get(ctx context.Context, runID string) (*domain.WorkflowRun, error)
	List(ctx context.Context) ([]*domain.WorkflowRun, error)
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show archived workflow runs",
		Long: `Display archived workflow runs, newest first.

With no arguments, lists every archived run. With a run ID, shows that
run's tasks, gate verdicts, and remaining retry budget.

Examples:
  conductor status                 # List all archived runs
  conductor status <run-id>        # Show one run in detail
  conductor status --output json   # Machine-readable output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, args, os.Stdout)
		},
	}
	parent.AddCommand(cmd)
}

// runStatus executes the status command with production dependencies.
func runStatus(ctx context.Context, cmd *cobra.Command, args []string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	output := cmd.Flag("output").Value.String()

	runsDir, err := config.RunsDir()
	if err != nil {
		return fmt.Errorf("failed to resolve runs directory: %w", err)
	}
	runStore, err := store.NewFileStore(runsDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	return runStatusWithDeps(ctx, w, output, args, runStore)
}

// runStatusWithDeps executes the status command with injected dependencies.
func runStatusWithDeps(ctx context.Context, w io.Writer, output string, args []string, runStore RunReader) error {
	if len(args) == 1 {
		run, err := runStore.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if output == OutputJSON {
			return printJSON(w, run)
		}
		printRunSummary(w, run)
		return nil
	}

	runs, err := runStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if output == OutputJSON {
			_, _ = fmt.Fprintln(w, "[]")
		} else {
			_, _ = fmt.Fprintln(w, "No archived runs. Run 'conductor run <goal-file>' to create one.")
		}
		return nil
	}

	if output == OutputJSON {
		return printJSON(w, runs)
	}
	printRunList(w, runs)
	return nil
}
