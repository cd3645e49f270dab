package engine

import (
	"time"

	"github.com/mrz1836/conductor/internal/domain"
)

// EvaluateGate decides whether a phase boundary passes, given the findings
// accumulated during the phase and the phase's blocking threshold. The gate
// passes iff no finding meets or exceeds the threshold; blocking findings
// are returned verbatim for the retry controller to act on.
//
// The verdict is a pure function of (phase, findings, threshold): identical
// inputs always produce an identical verdict. The evaluatedAt timestamp is
// supplied by the caller so the function itself holds no state.
func EvaluateGate(phase domain.Phase, findings []domain.Finding, threshold domain.Severity, evaluatedAt time.Time) domain.Gate {
	var blocking []domain.Finding
	for _, f := range findings {
		if f.Severity.Meets(threshold) {
			blocking = append(blocking, f)
		}
	}

	return domain.Gate{
		Phase:       phase,
		Threshold:   threshold,
		Passed:      len(blocking) == 0,
		Blocking:    blocking,
		EvaluatedAt: evaluatedAt,
	}
}

// currentFindings collects the findings the gate for a phase should judge:
// for each capability with tasks in the phase, the findings reported by that
// capability's latest terminal task. Findings remediated by a later cycle
// stay in the run's finding log for audit but no longer count against the
// gate.
func currentFindings(run *domain.WorkflowRun, phase domain.Phase) []domain.Finding {
	latest := make(map[string]*domain.Task)
	var order []string
	for _, t := range run.Tasks {
		if t.Phase != phase || !t.IsTerminal() {
			continue
		}
		if _, seen := latest[t.Capability]; !seen {
			order = append(order, t.Capability)
		}
		// Later tasks supersede earlier ones; run.Tasks is append-ordered.
		latest[t.Capability] = t
	}

	var findings []domain.Finding
	for _, cap := range order {
		t := latest[cap]
		if t.Result == nil {
			continue
		}
		findings = append(findings, t.Result.Findings...)
	}
	return findings
}
