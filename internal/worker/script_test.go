package worker

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

func scriptInput(taskID, capability string) Input {
	return Input{
		Task: domain.Task{
			ID:         taskID,
			Capability: capability,
			Phase:      domain.PhaseDevelopment,
			Attempts:   1,
			Input:      map[string]any{"target": "payments-service"},
		},
	}
}

func TestScript_Invoke_Success(t *testing.T) {
	s := NewScript([]string{"sh", "-c",
		`echo '{"artifact": {"built": true}, "status": "success"}'`,
	}, zerolog.Nop())

	result, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Empty(t, result.Findings)
}

func TestScript_Invoke_ReportsFindings(t *testing.T) {
	s := NewScript([]string{"sh", "-c",
		`echo '{"status": "success", "findings": [{"severity": "critical", "capability": "develop", "description": "hardcoded credential"}]}'`,
	}, zerolog.Nop())

	result, err := s.Invoke(context.Background(), scriptInput("review-1", "review"))

	require.NoError(t, err)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, domain.SeverityCritical, result.Findings[0].Severity)
	assert.Equal(t, "develop", result.Findings[0].Capability)
	assert.Equal(t, "hardcoded credential", result.Findings[0].Description)
}

func TestScript_Invoke_WorkerReportedFailure(t *testing.T) {
	s := NewScript([]string{"sh", "-c",
		`echo '{"status": "failure", "error": "build broke"}'`,
	}, zerolog.Nop())

	result, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.NoError(t, err, "a reported failure is not an invocation fault")
	assert.False(t, result.Success)
	assert.Equal(t, "build broke", result.Error)
}

func TestScript_Invoke_UnparseableOutput(t *testing.T) {
	s := NewScript([]string{"sh", "-c", `echo "this is not json"`}, zerolog.Nop())

	_, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrWorkerOutputInvalid)
}

func TestScript_Invoke_InvalidStatus(t *testing.T) {
	s := NewScript([]string{"sh", "-c", `echo '{"status": "maybe"}'`}, zerolog.Nop())

	_, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrWorkerOutputInvalid)
}

func TestScript_Invoke_InvalidFindingSeverity(t *testing.T) {
	s := NewScript([]string{"sh", "-c",
		`echo '{"status": "success", "findings": [{"severity": "blocker", "description": "x"}]}'`,
	}, zerolog.Nop())

	_, err := s.Invoke(context.Background(), scriptInput("review-1", "review"))

	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrWorkerOutputInvalid)
}

func TestScript_Invoke_CommandCrashWithoutOutput(t *testing.T) {
	s := NewScript([]string{"sh", "-c", `echo "boom" >&2; exit 3`}, zerolog.Nop())

	_, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrWorkerInvocation)
	assert.Contains(t, err.Error(), "boom")
}

func TestScript_Invoke_ContextCanceled(t *testing.T) {
	s := NewScript([]string{"sh", "-c", "sleep 10"}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := s.Invoke(ctx, scriptInput("develop-1", "develop"))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScript_Invoke_EmptyCommand(t *testing.T) {
	s := NewScript(nil, zerolog.Nop())

	_, err := s.Invoke(context.Background(), scriptInput("develop-1", "develop"))

	require.Error(t, err)
	assert.ErrorIs(t, err, conductorerrors.ErrWorkerInvocation)
}
