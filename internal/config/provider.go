package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

const (
	defaultSettleDelay         = 20 * time.Second
	defaultConfirmationTimeout = 10 * time.Minute
	defaultGasLimitMultiplier  = 1.2
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, err
		}
	}

	LoadEnvFiles(projectRoot)

	configPath := filepath.Join(projectRoot, config.ConfigFileName)
	file, err := LoadSlingFile(configPath)
	if err != nil {
		return nil, domain.NewConfigurationError(config.ConfigFileName, "cannot be loaded", err)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		ConfigPath:     configPath,
		NetworkName:    v.GetString("network"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non-interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		File:           file,
	}

	cfg.SettleDelay, err = durationSetting(v, "settle-delay", file.Deploy.SettleDelay, defaultSettleDelay)
	if err != nil {
		return nil, err
	}

	cfg.ConfirmationTimeout, err = durationSetting(v, "confirmation-timeout", file.Deploy.ConfirmationTimeout, defaultConfirmationTimeout)
	if err != nil {
		return nil, err
	}

	cfg.GasLimitMultiplier = file.Deploy.GasLimitMultiplier
	if cfg.GasLimitMultiplier == 0 {
		cfg.GasLimitMultiplier = defaultGasLimitMultiplier
	}
	if cfg.GasLimitMultiplier < 1 {
		return nil, domain.NewConfigurationError("deploy.gas_limit_multiplier", "must be at least 1", nil)
	}

	return cfg, nil
}

// durationSetting resolves a duration from flags/env first, then sling.toml,
// then the built-in default.
func durationSetting(v *viper.Viper, key, fileValue string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	source := key
	if raw == "" {
		raw = strings.TrimSpace(fileValue)
		source = "deploy." + strings.ReplaceAll(key, "-", "_")
	}
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, domain.NewConfigurationError(source, fmt.Sprintf("invalid duration %q", raw), err)
	}
	if d < 0 {
		return 0, domain.NewConfigurationError(source, "must not be negative", nil)
	}
	return d, nil
}

// FindProjectRoot walks up from current directory to find sling.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, config.ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", domain.NewConfigurationError(config.ConfigFileName, "not found in the current directory or any parent", nil)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("SLING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non-interactive", false)
	v.SetDefault("json", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(err)
		}
	})

	return v
}
