package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conductor/internal/constants"
	"github.com/mrz1836/conductor/internal/domain"
)

const capabilitiesConfigYAML = `engine:
  concurrency: 2
  retry_budget: 1
  default_timeout: 1m
capabilities:
  - name: develop
    phase: development
    command: ["echo", "ok"]
    concurrency_safe: true
    retriable: true
  - name: audit
    phase: security
    command: ["echo", "ok"]
`

// setConductorHome points CONDUCTOR_HOME at a temp dir seeded with the
// given global config.
func setConductorHome(t *testing.T, configYAML string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o600))
	}
	return home
}

func TestRunCapabilities_Render(t *testing.T) {
	setConductorHome(t, capabilitiesConfigYAML)

	flags := &GlobalFlags{}
	root := newRootCmd(flags, BuildInfo{})
	capCmd, _, err := root.Find([]string{"capabilities"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runCapabilities(context.Background(), capCmd, &buf))

	out := buf.String()
	assert.Contains(t, out, "develop")
	assert.Contains(t, out, "audit")
	assert.Contains(t, out, "development")
	assert.Contains(t, out, "security")
}

func TestRunCapabilities_JSON(t *testing.T) {
	setConductorHome(t, capabilitiesConfigYAML)

	flags := &GlobalFlags{}
	root := newRootCmd(flags, BuildInfo{})
	capCmd, _, err := root.Find([]string{"capabilities"})
	require.NoError(t, err)
	require.NoError(t, capCmd.Flag("output").Value.Set(OutputJSON))

	var buf bytes.Buffer
	require.NoError(t, runCapabilities(context.Background(), capCmd, &buf))

	var descriptors []domain.CapabilityDescriptor
	require.NoError(t, json.Unmarshal(buf.Bytes(), &descriptors))
	require.Len(t, descriptors, 2)
	// Registry lists capabilities sorted by name.
	assert.Equal(t, "audit", descriptors[0].Name)
	assert.Equal(t, "develop", descriptors[1].Name)
}
