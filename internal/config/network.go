package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

// NetworkResolver resolves network names to network contexts from sling.toml.
// It performs no network I/O.
type NetworkResolver struct {
	file *config.SlingFile
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(file *config.SlingFile) *NetworkResolver {
	return &NetworkResolver{file: file}
}

// GetNetworks returns the configured network names in sorted order
func (r *NetworkResolver) GetNetworks() []string {
	names := make([]string, 0, len(r.file.Networks))
	for name := range r.file.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves a network name to its context. An empty name selects the
// configured default network.
func (r *NetworkResolver) Resolve(networkName string) (*domain.NetworkContext, error) {
	if networkName == "" {
		networkName = r.file.DefaultNetwork
	}
	if networkName == "" {
		return nil, domain.NewConfigurationError("network", "no network selected and no default_network configured", nil)
	}

	entry, exists := r.file.Networks[networkName]
	if !exists {
		return nil, domain.NewConfigurationError("networks."+networkName, "network not found in "+config.ConfigFileName, nil)
	}

	if strings.TrimSpace(entry.URL) == "" {
		return nil, domain.NewConfigurationError("networks."+networkName+".url", "rpc url is required", nil)
	}

	chainID, err := ParseChainID(entry.ChainID)
	if err != nil {
		return nil, domain.NewConfigurationError("networks."+networkName+".chain_id", "invalid chain id", err)
	}

	return &domain.NetworkContext{
		ChainID:     chainID,
		Name:        networkName,
		EndpointURL: entry.URL,
		Explorer: domain.ExplorerConfig{
			APIURL:     entry.Explorer.APIURL,
			BrowserURL: strings.TrimSuffix(entry.Explorer.BrowserURL, "/"),
			APIKey:     entry.Explorer.APIKey,
		},
	}, nil
}

// ParseChainID converts a raw chain_id value into an integer. TOML integers,
// decimal strings and 0x-prefixed hex strings are accepted.
func ParseChainID(raw any) (uint64, error) {
	var (
		id  uint64
		err error
	)

	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("chain_id is required")
	case int64:
		if v <= 0 {
			return 0, fmt.Errorf("chain id must be positive, got %d", v)
		}
		id = uint64(v)
	case int:
		if v <= 0 {
			return 0, fmt.Errorf("chain id must be positive, got %d", v)
		}
		id = uint64(v)
	case uint64:
		id = v
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return 0, fmt.Errorf("chain id must be a positive integer, got %v", v)
		}
		id = uint64(v)
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			id, err = strconv.ParseUint(s[2:], 16, 64)
		} else {
			id, err = strconv.ParseUint(s, 10, 64)
		}
		if err != nil {
			return 0, fmt.Errorf("chain id %q is not an integer: %w", v, err)
		}
	default:
		return 0, fmt.Errorf("unsupported chain id type %T", raw)
	}

	if id == 0 {
		return 0, fmt.Errorf("chain id must be positive")
	}
	return id, nil
}
