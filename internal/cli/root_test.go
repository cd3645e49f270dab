package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "full info",
			info: BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-01"},
			want: "1.2.3 (commit: abc123, built: 2026-01-01)",
		},
		{
			name: "empty info uses placeholders",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}

func TestRootCommand_Help(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "conductor")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "status")
	assert.Contains(t, out, "capabilities")
}

func TestRootCommand_InvalidOutputFormat(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"capabilities", "--output", "xml"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommand_VerboseQuietMutuallyExclusive(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"capabilities", "--verbose", "--quiet"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestRootCommand_Version(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "9.9.9", Commit: "deadbeef", Date: "2026-02-02"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, buf.String(), "9.9.9 (commit: deadbeef, built: 2026-02-02)")
}
