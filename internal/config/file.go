package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// LoadEnvFiles loads .env and .env.local from the project root. Variables
// already present in the process environment are not overwritten.
func LoadEnvFiles(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				// Log warning but don't fail
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// LoadSlingFile reads and decodes sling.toml, expanding ${VAR} references in
// every string value.
func LoadSlingFile(path string) (*config.SlingFile, error) {
	var file config.SlingFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	expandSlingFile(&file)
	return &file, nil
}

func expandSlingFile(file *config.SlingFile) {
	file.DefaultNetwork = os.ExpandEnv(file.DefaultNetwork)
	file.CredentialEnv = os.ExpandEnv(file.CredentialEnv)

	for name, network := range file.Networks {
		network.URL = os.ExpandEnv(network.URL)
		network.Explorer.APIURL = os.ExpandEnv(network.Explorer.APIURL)
		network.Explorer.BrowserURL = os.ExpandEnv(network.Explorer.BrowserURL)
		network.Explorer.APIKey = os.ExpandEnv(network.Explorer.APIKey)
		if s, ok := network.ChainID.(string); ok {
			network.ChainID = os.ExpandEnv(s)
		}
		file.Networks[name] = network
	}

	for i, p := range file.Artifacts.Paths {
		file.Artifacts.Paths[i] = os.ExpandEnv(p)
	}

	for key, value := range file.Params {
		file.Params[key] = os.ExpandEnv(value)
	}
}
