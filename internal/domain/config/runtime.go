package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	ConfigPath  string

	// Context settings
	NetworkName string // empty selects DefaultNetwork

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
	Timeout        time.Duration

	// Deployment policy
	ConfirmationTimeout time.Duration // 0 waits for confirmation indefinitely
	SettleDelay         time.Duration
	GasLimitMultiplier  float64

	// Resolved configuration file
	File *SlingFile
}

// CredentialEnv returns the environment variable holding the deployer key
func (c *RuntimeConfig) CredentialEnv() string {
	if c.File != nil && c.File.CredentialEnv != "" {
		return c.File.CredentialEnv
	}
	return DefaultCredentialEnv
}

// ArtifactPaths returns the artifact roots, relative to the project root
func (c *RuntimeConfig) ArtifactPaths() []string {
	if c.File != nil && len(c.File.Artifacts.Paths) > 0 {
		return c.File.Artifacts.Paths
	}
	return DefaultArtifactPaths
}

// Params returns the plan parameters from the configuration file
func (c *RuntimeConfig) Params() map[string]string {
	if c.File == nil || c.File.Params == nil {
		return map[string]string{}
	}
	return c.File.Params
}
