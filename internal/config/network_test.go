package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
)

func TestParseChainID(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    uint64
		wantErr bool
	}{
		{name: "toml integer", raw: int64(2741), want: 2741},
		{name: "int", raw: 1, want: 1},
		{name: "decimal string", raw: "2741", want: 2741},
		{name: "padded decimal string", raw: " 324 ", want: 324},
		{name: "hex string", raw: "0xab5", want: 2741},
		{name: "upper hex prefix", raw: "0XAB5", want: 2741},
		{name: "whole float", raw: float64(10), want: 10},
		{name: "missing", raw: nil, wantErr: true},
		{name: "zero", raw: int64(0), wantErr: true},
		{name: "negative", raw: int64(-5), wantErr: true},
		{name: "fractional float", raw: 1.5, wantErr: true},
		{name: "word", raw: "mainnet", wantErr: true},
		{name: "empty string", raw: "", wantErr: true},
		{name: "bool", raw: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChainID(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNetworkResolver_Resolve(t *testing.T) {
	file := &config.SlingFile{
		DefaultNetwork: "abstractMainnet",
		Networks: map[string]config.NetworkConfig{
			"abstractMainnet": {
				URL:     "https://api.raas.matterhosted.dev",
				ChainID: int64(2741),
				Explorer: config.ExplorerConfig{
					APIURL:     "https://api.abscan.org/api",
					BrowserURL: "https://explorer.mainnet.abs.xyz/",
					APIKey:     "secret",
				},
			},
			"local": {
				URL:     "http://127.0.0.1:8545",
				ChainID: "0x7a69",
				Local:   true,
			},
			"broken": {
				URL:     "http://127.0.0.1:8545",
				ChainID: "abc",
			},
			"nourl": {
				ChainID: int64(1),
			},
		},
	}
	resolver := NewNetworkResolver(file)

	t.Run("named network", func(t *testing.T) {
		network, err := resolver.Resolve("abstractMainnet")
		require.NoError(t, err)
		assert.Equal(t, uint64(2741), network.ChainID)
		assert.Equal(t, "abstractMainnet", network.Name)
		assert.Equal(t, "https://api.raas.matterhosted.dev", network.EndpointURL)
		assert.Equal(t, "https://api.abscan.org/api", network.Explorer.APIURL)
		assert.Equal(t, "https://explorer.mainnet.abs.xyz", network.Explorer.BrowserURL)
		assert.Equal(t, "secret", network.Explorer.APIKey)
	})

	t.Run("default network", func(t *testing.T) {
		network, err := resolver.Resolve("")
		require.NoError(t, err)
		assert.Equal(t, "abstractMainnet", network.Name)
	})

	t.Run("hex chain id", func(t *testing.T) {
		network, err := resolver.Resolve("local")
		require.NoError(t, err)
		assert.Equal(t, uint64(31337), network.ChainID)
		assert.Empty(t, network.Explorer.APIURL)
	})

	errorCases := []struct {
		name    string
		network string
		key     string
	}{
		{name: "unknown network", network: "sepolia", key: "networks.sepolia"},
		{name: "malformed chain id", network: "broken", key: "networks.broken.chain_id"},
		{name: "missing url", network: "nourl", key: "networks.nourl.url"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolver.Resolve(tc.network)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))

			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.key, cfgErr.Key)
		})
	}

	t.Run("no default configured", func(t *testing.T) {
		_, err := NewNetworkResolver(&config.SlingFile{}).Resolve("")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestNetworkResolver_GetNetworks(t *testing.T) {
	resolver := NewNetworkResolver(&config.SlingFile{
		Networks: map[string]config.NetworkConfig{
			"zkSync":          {},
			"abstractMainnet": {},
			"local":           {},
		},
	})

	assert.Equal(t, []string{"abstractMainnet", "local", "zkSync"}, resolver.GetNetworks())
}
