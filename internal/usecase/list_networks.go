package usecase

import (
	"context"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct{}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus `json:"networks"`
	Default  string          `json:"default,omitempty"`
}

// NetworkStatus represents the resolution status of a configured network
type NetworkStatus struct {
	Name        string `json:"name"`
	ChainID     uint64 `json:"chainId,omitempty"`
	EndpointURL string `json:"rpcUrl,omitempty"`
	Explorer    string `json:"explorer,omitempty"`
	Error       error  `json:"-"`
}

// ListNetworks is a use case for listing configured networks
type ListNetworks struct {
	resolver NetworkResolver
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{
		resolver: resolver,
	}
}

// Run executes the use case. Resolution errors are reported per network.
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	networkNames := uc.resolver.GetNetworks(ctx)

	result := &ListNetworksResult{
		Networks: make([]NetworkStatus, 0, len(networkNames)),
	}

	// An empty name resolves the default network
	if info, err := uc.resolver.ResolveNetwork(ctx, ""); err == nil {
		result.Default = info.Name
	}

	for _, name := range networkNames {
		status := NetworkStatus{
			Name: name,
		}

		info, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			status.Error = err
		} else {
			status.ChainID = info.ChainID
			status.EndpointURL = info.EndpointURL
			status.Explorer = info.Explorer.APIURL
		}

		result.Networks = append(result.Networks, status)
	}

	return result, nil
}
