package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
)

const testConfig = `
default_network = "local"

[networks.local]
url = "http://127.0.0.1:8545"
chain_id = 31337

[networks.abstractTestnet]
url = "https://api.testnet.abs.xyz"
chain_id = 11124

[networks.abstractTestnet.explorer]
api_url = "https://api-sepolia.abscan.org/api"
browser_url = "https://sepolia.abscan.org/"
`

func setupProject(t *testing.T) {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sling.toml"), []byte(testConfig), 0644))
	t.Chdir(dir)

	t.Setenv("PV_KEY", "")
	t.Setenv("PRIVATE_KEY", "")
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "generic failure", err: errors.New("boom"), want: ExitFailure},
		{name: "missing credential", err: &domain.MissingCredential{EnvVar: "PV_KEY"}, want: ExitMissingCredential},
		{name: "wrapped exit error", err: fmt.Errorf("wrapped: %w", &ExitError{Code: 7, Err: errors.New("x")}), want: 7},
		{name: "cancelled", err: fmt.Errorf("step 1 failed: %w", context.Canceled), want: ExitInterrupted},
		{name: "configuration", err: domain.NewConfigurationError("chain_id", "mismatch", nil), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestVersionCmd(t *testing.T) {
	code, stdout, _ := run(t, "version")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "sling version")
}

func TestPlansCmd(t *testing.T) {
	setupProject(t)

	code, stdout, stderr := run(t, "plans")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "lockup-periphery")
	assert.Contains(t, stdout, "zk-gateway")

	code, stdout, stderr = run(t, "plans", "show", "lockup-periphery", "--json")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, `"name": "lockup-periphery"`)
	assert.Contains(t, stdout, `"SablierV2BatchLockup"`)

	code, _, stderr = run(t, "plans", "show", "lockup")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "did you mean lockup-periphery")
}

func TestNetworksCmd(t *testing.T) {
	setupProject(t)

	code, stdout, stderr := run(t, "networks")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "abstractTestnet")
	assert.Contains(t, stdout, "11124")
	assert.Contains(t, stdout, "https://api-sepolia.abscan.org/api")
}

func TestDeployCmd_MissingCredential(t *testing.T) {
	setupProject(t)

	code, _, stderr := run(t, "deploy", "lockup-periphery", "--network", "abstractTestnet", "--yes")
	assert.Equal(t, ExitMissingCredential, code)
	assert.Contains(t, stderr, "Please set the PV_KEY in your .env file")
	assert.NotContains(t, stderr, "❌")
}

func TestDeployCmd_UnknownNetwork(t *testing.T) {
	setupProject(t)

	code, _, stderr := run(t, "deploy", "lockup-periphery", "--network", "nowhere", "--yes")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "nowhere")
}

func TestRootCmd_NoProject(t *testing.T) {
	t.Chdir(t.TempDir())

	code, _, stderr := run(t, "plans")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "sling.toml")
}

func TestRootCmd_TimeoutReleasedOnError(t *testing.T) {
	setupProject(t)

	var runCtx context.Context
	rootCmd := NewRootCmd()
	rootCmd.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx = cmd.Context()
			return errors.New("boom")
		},
	})

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), rootCmd, []string{"fail", "--timeout", "1h"}, &stdout, &stderr)
	assert.Equal(t, ExitFailure, code)

	require.NotNil(t, runCtx)
	_, hasDeadline := runCtx.Deadline()
	assert.True(t, hasDeadline)
	assert.ErrorIs(t, runCtx.Err(), context.Canceled)
}
