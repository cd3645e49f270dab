package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
)

// printJSON writes v to w as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, _ = fmt.Fprintln(w, string(data))
	return nil
}

// printDeliverable renders a synthesized deliverable as human-readable text.
func printDeliverable(w io.Writer, d *domain.Deliverable) {
	_, _ = fmt.Fprintf(w, "Run %s: %s\n", d.RunID, d.FinalStatus)
	if d.Goal != "" {
		_, _ = fmt.Fprintf(w, "Goal: %s\n", d.Goal)
	}

	if len(d.Artifacts) > 0 {
		_, _ = fmt.Fprintln(w, "\nArtifacts:")
		for _, capability := range sortedKeys(d.Artifacts) {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", capability, d.Artifacts[capability])
		}
	}

	if len(d.GateHistory) > 0 {
		_, _ = fmt.Fprintln(w, "\nGates:")
		for _, gate := range d.GateHistory {
			verdict := "passed"
			if !gate.Passed {
				verdict = fmt.Sprintf("failed (%d blocking)", len(gate.Blocking))
			}
			_, _ = fmt.Fprintf(w, "  %-12s %s\n", gate.Phase, verdict)
		}
	}

	if len(d.FindingHistory) > 0 {
		_, _ = fmt.Fprintf(w, "\nFindings (%d):\n", len(d.FindingHistory))
		for _, f := range d.FindingHistory {
			_, _ = fmt.Fprintf(w, "  [%s] %s: %s\n", f.Severity, f.TaskID, f.Description)
		}
	}
}

// printRunSummary renders a single archived run as human-readable text.
func printRunSummary(w io.Writer, run *domain.WorkflowRun) {
	_, _ = fmt.Fprintf(w, "Run:     %s\n", run.ID)
	if run.Goal != "" {
		_, _ = fmt.Fprintf(w, "Goal:    %s\n", run.Goal)
	}
	_, _ = fmt.Fprintf(w, "Status:  %s\n", run.Status)
	_, _ = fmt.Fprintf(w, "Created: %s\n", run.CreatedAt.Format(constants.DisplayTimeFormat))
	if run.CompletedAt != nil {
		_, _ = fmt.Fprintf(w, "Ended:   %s\n", run.CompletedAt.Format(constants.DisplayTimeFormat))
	}
	_, _ = fmt.Fprintf(w, "Budget:  %d of %d remediation cycles remaining\n",
		run.RetryBudget, run.RetryBudgetInitial)

	_, _ = fmt.Fprintln(w, "\nTasks:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  ID\tCAPABILITY\tPHASE\tSTATUS\tATTEMPTS")
	for _, t := range run.Tasks {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\n",
			t.ID, t.Capability, t.Phase, t.Status, t.Attempts)
	}
	_ = tw.Flush()

	if len(run.Gates) > 0 {
		_, _ = fmt.Fprintln(w, "\nGates:")
		for _, gate := range run.Gates {
			verdict := "passed"
			if !gate.Passed {
				verdict = fmt.Sprintf("failed (%d blocking)", len(gate.Blocking))
			}
			_, _ = fmt.Fprintf(w, "  %-12s threshold=%s  %s\n", gate.Phase, gate.Threshold, verdict)
		}
	}
}

// printRunList renders archived runs as a table, newest first.
func printRunList(w io.Writer, runs []*domain.WorkflowRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RUN\tGOAL\tSTATUS\tTASKS\tCREATED")
	for _, run := range runs {
		goal := run.Goal
		if goal == "" {
			goal = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			run.ID, goal, run.Status, len(run.Tasks),
			run.CreatedAt.Format(constants.DisplayTimeFormat))
	}
	_ = tw.Flush()
}

// printCapabilities renders registered capability descriptors as a table.
func printCapabilities(w io.Writer, descriptors []domain.CapabilityDescriptor) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CAPABILITY\tPHASE\tTIMEOUT\tCONCURRENCY-SAFE\tRETRIABLE")
	for _, desc := range descriptors {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			desc.Name, desc.Phase, desc.Timeout,
			yesNo(desc.ConcurrencySafe), yesNo(desc.Retriable))
	}
	_ = tw.Flush()
}

// yesNo formats a boolean for table display.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// sortedKeys returns the map's keys in lexical order for stable output.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

