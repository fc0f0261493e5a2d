package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

const abstractToml = `
default_network = "abstractTestnet"

[networks.abstractTestnet]
url = "${SLING_TEST_RPC}"
chain_id = 11124

[networks.abstractTestnet.explorer]
api_url = "https://api-sepolia.abscan.org/api"
browser_url = "https://sepolia.abscan.org/"
api_key = "${SLING_TEST_API_KEY}"

[params]
ADMIN = "0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96"
`

func writeProject(t *testing.T, toml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(toml), 0644))
	return dir
}

func TestProvider(t *testing.T) {
	t.Run("defaults and expansion", func(t *testing.T) {
		dir := writeProject(t, abstractToml)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SLING_TEST_RPC=https://api.testnet.abs.xyz\nSLING_TEST_API_KEY=abc\n"), 0644))
		t.Cleanup(func() {
			os.Unsetenv("SLING_TEST_RPC")
			os.Unsetenv("SLING_TEST_API_KEY")
		})

		v := viper.New()
		v.Set("project_root", dir)

		cfg, err := Provider(v)
		require.NoError(t, err)

		assert.Equal(t, dir, cfg.ProjectRoot)
		assert.Equal(t, filepath.Join(dir, config.ConfigFileName), cfg.ConfigPath)
		assert.Equal(t, 20*time.Second, cfg.SettleDelay)
		assert.Equal(t, 10*time.Minute, cfg.ConfirmationTimeout)
		assert.Equal(t, 1.2, cfg.GasLimitMultiplier)
		assert.Equal(t, config.DefaultCredentialEnv, cfg.CredentialEnv())
		assert.Equal(t, config.DefaultArtifactPaths, cfg.ArtifactPaths())
		assert.Equal(t, "0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96", cfg.Params()["ADMIN"])

		network := cfg.File.Networks["abstractTestnet"]
		assert.Equal(t, "https://api.testnet.abs.xyz", network.URL)
		assert.Equal(t, "abc", network.Explorer.APIKey)
	})

	t.Run("flags override the file", func(t *testing.T) {
		dir := writeProject(t, abstractToml+`
[deploy]
settle_delay = "5s"
confirmation_timeout = "2m"
gas_limit_multiplier = 1.5
`)
		v := viper.New()
		v.Set("project_root", dir)
		v.Set("settle-delay", "0s")
		v.Set("network", "abstractMainnet")

		cfg, err := Provider(v)
		require.NoError(t, err)

		assert.Equal(t, time.Duration(0), cfg.SettleDelay)
		assert.Equal(t, 2*time.Minute, cfg.ConfirmationTimeout)
		assert.Equal(t, 1.5, cfg.GasLimitMultiplier)
		assert.Equal(t, "abstractMainnet", cfg.NetworkName)
	})

	t.Run("invalid settings", func(t *testing.T) {
		tests := []struct {
			name    string
			deploy  string
			wantKey string
		}{
			{name: "bad duration", deploy: `settle_delay = "soon"`, wantKey: "deploy.settle_delay"},
			{name: "negative duration", deploy: `confirmation_timeout = "-1s"`, wantKey: "deploy.confirmation_timeout"},
			{name: "multiplier below one", deploy: `gas_limit_multiplier = 0.5`, wantKey: "deploy.gas_limit_multiplier"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dir := writeProject(t, abstractToml+"\n[deploy]\n"+tt.deploy+"\n")
				v := viper.New()
				v.Set("project_root", dir)

				_, err := Provider(v)
				var cfgErr *domain.ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.wantKey, cfgErr.Key)
			})
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := writeProject(t, "default_network = [")
		v := viper.New()
		v.Set("project_root", dir)

		_, err := Provider(v)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestFindProjectRoot(t *testing.T) {
	dir := writeProject(t, abstractToml)
	nested := filepath.Join(dir, "contracts", "gateway")
	require.NoError(t, os.MkdirAll(nested, 0755))

	t.Chdir(nested)

	root, err := FindProjectRoot()
	require.NoError(t, err)

	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(root)
	assert.Equal(t, want, got)
}
