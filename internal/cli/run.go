// Package cli provides the command-line interface for Conductor.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/clock"
	"github.com/mrz1836/conductor/internal/config"
	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/engine"
	"github.com/mrz1836/conductor/internal/errors"
	"github.com/mrz1836/conductor/internal/graph"
	"github.com/mrz1836/conductor/internal/registry"
	"github.com/mrz1836/conductor/internal/store"
	"github.com/mrz1836/conductor/internal/worker"
)

// runOptions holds the run command's flag values.
type runOptions struct {
	concurrency int
	noArchive   bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(parent *cobra.Command) {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <goal-file>",
		Short: "Execute a goal through the phase-gated workflow",
		Long: `Build a task graph from a goal descriptor, execute it through the
phase sequence, and print the synthesized deliverable.

Each required capability in the goal becomes a task, routed to the
worker registered for that capability in the configuration. Between
phases, a quality gate inspects the findings reported so far; blocking
findings trigger remediation cycles until the gate passes or the retry
budget runs out.

Terminal runs are archived under ~/.conductor/runs for later
inspection with 'conductor status'.

Examples:
  conductor run goal.yaml
  conductor run goal.yaml --concurrency 8
  conductor run goal.yaml --output json
  conductor run goal.yaml --no-archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, args[0], opts, os.Stdout)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0,
		"override the configured task concurrency ceiling")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false,
		"skip archiving the terminal run")

	parent.AddCommand(cmd)
}

// runRun executes the run command with production dependencies.
func runRun(ctx context.Context, cmd *cobra.Command, goalPath string, opts *runOptions, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := Logger()
	outputFormat := cmd.Flag("output").Value.String()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	var runStore store.Store
	if !opts.noArchive {
		runsDir, dirErr := config.RunsDir()
		if dirErr != nil {
			return fmt.Errorf("failed to resolve runs directory: %w", dirErr)
		}
		runStore, err = store.NewFileStore(runsDir)
		if err != nil {
			return fmt.Errorf("failed to create run store: %w", err)
		}
	}

	return runRunWithDeps(ctx, w, outputFormat, goalPath, opts, cfg, runStore, logger)
}

// runRunWithDeps executes the run command with injected dependencies.
// This enables testing with in-memory capabilities and a temp-dir store.
func runRunWithDeps(
	ctx context.Context,
	w io.Writer,
	outputFormat string,
	goalPath string,
	opts *runOptions,
	cfg *config.Config,
	runStore store.Store,
	logger zerolog.Logger,
) error {
	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	thresholds, err := cfg.Engine.Thresholds()
	if err != nil {
		return err
	}

	goal, err := config.LoadGoal(goalPath)
	if err != nil {
		return err
	}

	builder := graph.NewBuilder(reg, clock.RealClock{}, graph.Defaults{
		RetryBudget:    cfg.Engine.RetryBudget,
		GateThresholds: thresholds,
	})
	run, err := builder.Build(goal)
	if err != nil {
		return err
	}

	concurrency := cfg.Engine.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	eng := engine.New(reg,
		engine.WithConcurrency(concurrency),
		engine.WithLogger(logger),
	)

	logger.Info().
		Str("run_id", run.ID).
		Str("goal", run.Goal).
		Int("tasks", len(run.Tasks)).
		Int("concurrency", concurrency).
		Msg("starting workflow run")

	if err := eng.Run(ctx, run); err != nil {
		return fmt.Errorf("workflow execution failed: %w", err)
	}

	deliverable, err := engine.Synthesize(run)
	if err != nil {
		return fmt.Errorf("failed to synthesize deliverable: %w", err)
	}

	if runStore != nil {
		// Archive with a fresh context so a canceled run is still
		// recorded as aborted.
		if err := runStore.Archive(context.WithoutCancel(ctx), run); err != nil {
			logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to archive run")
		}
	}

	if outputFormat == OutputJSON {
		if err := printJSON(w, deliverable); err != nil {
			return err
		}
	} else {
		printDeliverable(w, deliverable)
	}

	if run.Status != constants.RunStatusSucceeded {
		return fmt.Errorf("%w: run %s terminated %s", errors.ErrRunFailed, run.ID, run.Status)
	}
	return nil
}

// buildRegistry registers a worker for every configured capability.
// Interactive capabilities get a decision worker; the rest get script
// workers wrapping their configured command.
func buildRegistry(cfg *config.Config, logger zerolog.Logger) (*registry.Registry, error) {
	reg := registry.New()
	for i := range cfg.Capabilities {
		cc := &cfg.Capabilities[i]
		desc, err := cc.Descriptor(cfg.Engine.DefaultTimeout)
		if err != nil {
			return nil, fmt.Errorf("capability %q: %w", cc.Name, err)
		}

		var wk worker.Worker
		if cc.Interactive {
			wk = worker.NewDecision()
		} else {
			wk = worker.NewScript(cc.Command, logger)
		}

		if err := reg.Register(desc, wk); err != nil {
			return nil, fmt.Errorf("capability %q: %w", cc.Name, err)
		}
	}
	return reg, nil
}
