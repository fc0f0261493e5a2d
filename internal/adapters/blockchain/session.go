package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	slingabi "github.com/trebuchet-org/sling/internal/adapters/abi"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// Backend is the chain access a Session needs. Both *ethclient.Client and
// the simulated backend's client satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// SessionOptions tunes transaction submission
type SessionOptions struct {
	ConfirmationTimeout time.Duration // 0 waits indefinitely
	GasLimitMultiplier  float64       // applied to the node's gas estimate when > 1
}

// Session sends transactions from one deployer account on one chain. It owns
// the private key for the duration of a run.
type Session struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	encoder *slingabi.Encoder
	opts    SessionOptions
	log     *slog.Logger
}

// NewSession creates a deployer session for key on chainID
func NewSession(backend Backend, key *ecdsa.PrivateKey, chainID uint64, opts SessionOptions, log *slog.Logger) *Session {
	return &Session{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).SetUint64(chainID),
		encoder: slingabi.NewEncoder(),
		opts:    opts,
		log:     log,
	}
}

// From returns the deployer address
func (s *Session) From() common.Address {
	return s.from
}

// Deploy creates a contract from the artifact's creation bytecode
func (s *Session) Deploy(ctx context.Context, artifact *domain.ContractArtifact, args []any) (*domain.DeployedContract, error) {
	values, err := s.encoder.ConvertArgs(artifact, "", args)
	if err != nil {
		return nil, err
	}

	opts, err := s.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	if s.opts.GasLimitMultiplier > 1 {
		packed, err := artifact.ABI.Pack("", values...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack constructor arguments: %w", err)
		}
		data := append(append([]byte{}, artifact.Bytecode...), packed...)
		if opts.GasLimit, err = s.estimateGas(ctx, nil, data); err != nil {
			return nil, err
		}
	}

	address, tx, _, err := bind.DeployContract(opts, artifact.ABI, artifact.Bytecode, s.backend, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to send deployment transaction: %w", err)
	}
	s.log.Debug("deployment transaction sent", "contract", artifact.Name, "tx", tx.Hash().Hex(), "address", address.Hex())

	receipt, err := s.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}

	exists, err := CheckDeploymentExists(ctx, s.backend, address)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no contract code at %s after deployment", address.Hex())
	}

	return &domain.DeployedContract{
		Name:    artifact.Name,
		Address: address.Hex(),
		TxHash:  tx.Hash().Hex(),
		GasUsed: receipt.GasUsed,
	}, nil
}

// Call sends a state-changing method call to a deployed contract
func (s *Session) Call(ctx context.Context, target *domain.DeployedContract, method string, args []any) (*domain.CallResult, error) {
	if target.Artifact == nil {
		return nil, fmt.Errorf("no ABI known for %s", target.Name)
	}

	values, err := s.encoder.ConvertArgs(target.Artifact, method, args)
	if err != nil {
		return nil, err
	}

	opts, err := s.transactOpts(ctx)
	if err != nil {
		return nil, err
	}

	address := common.HexToAddress(target.Address)
	if s.opts.GasLimitMultiplier > 1 {
		data, err := target.Artifact.ABI.Pack(method, values...)
		if err != nil {
			return nil, fmt.Errorf("failed to pack %s arguments: %w", method, err)
		}
		if opts.GasLimit, err = s.estimateGas(ctx, &address, data); err != nil {
			return nil, err
		}
	}

	contract := bind.NewBoundContract(address, target.Artifact.ABI, s.backend, s.backend, s.backend)
	tx, err := contract.Transact(opts, method, values...)
	if err != nil {
		return nil, fmt.Errorf("failed to send %s transaction: %w", method, err)
	}
	s.log.Debug("call transaction sent", "target", target.Name, "method", method, "tx", tx.Hash().Hex())

	receipt, err := s.waitMined(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &domain.CallResult{
		Target:  target.Name,
		Method:  method,
		TxHash:  tx.Hash().Hex(),
		GasUsed: receipt.GasUsed,
	}, nil
}

func (s *Session) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

func (s *Session) estimateGas(ctx context.Context, to *common.Address, data []byte) (uint64, error) {
	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: to, Data: data})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas: %w", err)
	}
	return uint64(float64(gas) * s.opts.GasLimitMultiplier), nil
}

// waitMined blocks until the transaction is included, bounded by the
// confirmation timeout, and fails on a reverted receipt
func (s *Session) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	waitCtx := ctx
	if s.opts.ConfirmationTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, s.opts.ConfirmationTimeout)
		defer cancel()
	}

	receipt, err := bind.WaitMined(waitCtx, s.backend, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("transaction %s not confirmed within %s: %w", tx.Hash().Hex(), s.opts.ConfirmationTimeout, err)
		}
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted (block %s)", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}

var _ usecase.ContractDeployer = (*Session)(nil)
