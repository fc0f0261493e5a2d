package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/sling/internal/domain"
)

const dialTimeout = 15 * time.Second

// Connect dials the network endpoint and checks that it serves the
// configured chain
func Connect(ctx context.Context, network *domain.NetworkContext) (*ethclient.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	urlKey := "networks." + network.Name + ".url"
	client, err := ethclient.DialContext(dialCtx, network.EndpointURL)
	if err != nil {
		return nil, domain.NewConfigurationError(urlKey, "failed to connect to RPC "+network.EndpointURL, err)
	}

	if err := CheckChainID(dialCtx, client, network.ChainID); err != nil {
		client.Close()
		if errors.Is(err, domain.ErrConfiguration) {
			return nil, err
		}
		return nil, domain.NewConfigurationError(urlKey, "endpoint unreachable", err)
	}
	return client, nil
}

// ChainIDReader is satisfied by ethclient and the simulated backend
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// CheckChainID fails when the endpoint reports a different chain than expected
func CheckChainID(ctx context.Context, client ChainIDReader, expected uint64) error {
	got, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	if got.Uint64() != expected {
		return domain.NewConfigurationError("chain_id", fmt.Sprintf("chain ID mismatch: expected %d, endpoint reports %d", expected, got.Uint64()), nil)
	}
	return nil
}

// CodeReader reads deployed bytecode
type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// CheckDeploymentExists reports whether code exists at address
func CheckDeploymentExists(ctx context.Context, client CodeReader, address common.Address) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	code, err := client.CodeAt(ctx, address, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check code at %s: %w", address.Hex(), err)
	}
	return len(code) > 0, nil
}
