package config

const (
	// ConfigFileName is the project configuration file searched for from the working directory up
	ConfigFileName = "sling.toml"

	// DefaultCredentialEnv is the environment variable holding the deployer private key
	DefaultCredentialEnv = "PV_KEY"

	// FallbackCredentialEnv is consulted when DefaultCredentialEnv is unset
	FallbackCredentialEnv = "PRIVATE_KEY"
)

// DefaultArtifactPaths are searched for build outputs when none are configured
var DefaultArtifactPaths = []string{"artifacts", "out"}

// SlingFile is the decoded sling.toml
type SlingFile struct {
	DefaultNetwork string                   `toml:"default_network"`
	CredentialEnv  string                   `toml:"credential_env"`
	Networks       map[string]NetworkConfig `toml:"networks"`
	Artifacts      ArtifactsConfig          `toml:"artifacts"`
	Deploy         DeployConfig             `toml:"deploy"`
	Params         map[string]string        `toml:"params"`
}

// NetworkConfig is one [networks.<name>] entry. ChainID is kept raw so that
// both integers and strings can be reported precisely when malformed.
type NetworkConfig struct {
	URL      string         `toml:"url"`
	ChainID  any            `toml:"chain_id"`
	Explorer ExplorerConfig `toml:"explorer"`
}

// ExplorerConfig is the [networks.<name>.explorer] table
type ExplorerConfig struct {
	APIURL     string `toml:"api_url"`
	BrowserURL string `toml:"browser_url"`
	APIKey     string `toml:"api_key"`
}

// ArtifactsConfig is the [artifacts] table
type ArtifactsConfig struct {
	Paths []string `toml:"paths"`
}

// DeployConfig is the [deploy] table. Durations are strings such as "20s".
type DeployConfig struct {
	ConfirmationTimeout string  `toml:"confirmation_timeout"`
	SettleDelay         string  `toml:"settle_delay"`
	GasLimitMultiplier  float64 `toml:"gas_limit_multiplier"`
}
