package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conductor/internal/domain"
	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// scriptRequest is the JSON document written to the command's stdin.
type scriptRequest struct {
	TaskID      string           `json:"task_id"`
	Capability  string           `json:"capability"`
	Phase       string           `json:"phase"`
	Attempt     int              `json:"attempt"`
	Input       map[string]any   `json:"input,omitempty"`
	Remediation []domain.Finding `json:"remediation,omitempty"`
}

// scriptResponse is the JSON document expected on the command's stdout.
type scriptResponse struct {
	Artifact any             `json:"artifact,omitempty"`
	Findings []scriptFinding `json:"findings,omitempty"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
}

// scriptFinding is the wire form of a finding as reported by a script.
// The engine fills in task identity, phase, and timestamp.
type scriptFinding struct {
	Severity    string `json:"severity"`
	Capability  string `json:"capability,omitempty"`
	Description string `json:"description"`
	Remediation string `json:"remediation,omitempty"`
}

// Script invokes an external command as a specialist worker. The task input
// is written to the command's stdin as JSON, and the command must print a
// JSON result document to stdout:
//
//	{"artifact": ..., "findings": [...], "status": "success"|"failure"}
//
// A non-zero exit with parseable output is treated as whatever the output
// says; anything unparseable is a worker invocation fault.
type Script struct {
	command []string
	logger  zerolog.Logger
}

// NewScript creates a script worker for the given command and arguments.
func NewScript(command []string, logger zerolog.Logger) *Script {
	return &Script{command: command, logger: logger}
}

// Invoke implements Worker by running the configured command.
func (s *Script) Invoke(ctx context.Context, in Input) (*domain.TaskResult, error) {
	if len(s.command) == 0 {
		return nil, fmt.Errorf("%w: empty command", conductorerrors.ErrWorkerInvocation)
	}

	req := scriptRequest{
		TaskID:      in.Task.ID,
		Capability:  in.Task.Capability,
		Phase:       in.Task.Phase.String(),
		Attempt:     in.Task.Attempts,
		Input:       in.Task.Input,
		Remediation: in.Remediation,
	}
	stdin, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %s", conductorerrors.ErrWorkerInvocation, err)
	}

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...) //nolint:gosec // Command comes from operator config
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug().
		Str("task_id", in.Task.ID).
		Str("capability", in.Task.Capability).
		Str("command", s.command[0]).
		Msg("invoking script worker")

	runErr := cmd.Run()
	if ctx.Err() != nil {
		// Timeout and cancellation are the engine's to classify.
		return nil, ctx.Err()
	}

	resp, parseErr := parseScriptResponse(stdout.Bytes())
	if parseErr != nil {
		if runErr != nil {
			// Command failed without usable output.
			return nil, fmt.Errorf("%w: %s: %s",
				conductorerrors.ErrWorkerInvocation, runErr, firstLine(stderr.String()))
		}
		return nil, parseErr
	}

	result := &domain.TaskResult{
		Artifact: resp.Artifact,
		Success:  resp.Status == "success",
		Error:    resp.Error,
	}
	for _, f := range resp.Findings {
		result.Findings = append(result.Findings, domain.Finding{
			Severity:    domain.Severity(f.Severity),
			Capability:  f.Capability,
			Description: f.Description,
			Remediation: f.Remediation,
		})
	}
	if !result.Success && result.Error == "" {
		result.Error = firstLine(stderr.String())
	}
	return result, nil
}

// parseScriptResponse decodes and validates a script's stdout document.
func parseScriptResponse(out []byte) (*scriptResponse, error) {
	var resp scriptResponse
	if err := json.Unmarshal(bytes.TrimSpace(out), &resp); err != nil {
		return nil, fmt.Errorf("%w: %s", conductorerrors.ErrWorkerOutputInvalid, err)
	}
	if resp.Status != "success" && resp.Status != "failure" {
		return nil, fmt.Errorf("%w: status %q", conductorerrors.ErrWorkerOutputInvalid, resp.Status)
	}
	for _, f := range resp.Findings {
		if !domain.Severity(f.Severity).IsValid() {
			return nil, fmt.Errorf("%w: finding severity %q", conductorerrors.ErrWorkerOutputInvalid, f.Severity)
		}
	}
	return &resp, nil
}

// firstLine returns the first line of s, trimmed. Keeps error messages short.
func firstLine(s string) string {
	trimmed := bytes.TrimSpace([]byte(s))
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return string(trimmed)
}
