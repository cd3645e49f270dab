// Package cli provides the command-line interface for Conductor.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conductor/internal/config"
)

// AddCapabilitiesCommand adds the capabilities command to the root command.
func AddCapabilitiesCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "List configured capabilities",
		Long: `List the capabilities declared in the configuration, with the phase,
timeout, and scheduling attributes each one registers with.

Examples:
  conductor capabilities
  conductor capabilities --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCapabilities(cmd.Context(), cmd, os.Stdout)
		},
	}
	parent.AddCommand(cmd)
}

// runCapabilities executes the capabilities command.
func runCapabilities(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := Logger()
	output := cmd.Flag("output").Value.String()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	descriptors := reg.List()
	if output == OutputJSON {
		return printJSON(w, descriptors)
	}
	printCapabilities(w, descriptors)
	return nil
}
