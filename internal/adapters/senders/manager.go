package senders

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/sling/internal/adapters/blockchain"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// Dialer opens a chain backend for a network
type Dialer func(ctx context.Context, network *domain.NetworkContext) (blockchain.Backend, error)

// DialEthclient connects with ethclient after checking the chain ID
func DialEthclient(ctx context.Context, network *domain.NetworkContext) (blockchain.Backend, error) {
	return blockchain.Connect(ctx, network)
}

// Service binds the private key held in the credential environment variable
// to a network
type Service struct {
	envVars []string
	lookup  func(string) (string, bool)
	dial    Dialer
	opts    blockchain.SessionOptions
	log     *slog.Logger
}

// NewService creates a new sender service
func NewService(cfg *config.RuntimeConfig, dial Dialer, log *slog.Logger) *Service {
	envVars := []string{cfg.CredentialEnv()}
	if envVars[0] == config.DefaultCredentialEnv {
		envVars = append(envVars, config.FallbackCredentialEnv)
	}
	return &Service{
		envVars: envVars,
		lookup:  os.LookupEnv,
		dial:    dial,
		opts: blockchain.SessionOptions{
			ConfirmationTimeout: cfg.ConfirmationTimeout,
			GasLimitMultiplier:  cfg.GasLimitMultiplier,
		},
		log: log,
	}
}

// WithLookup replaces the environment lookup
func (s *Service) WithLookup(lookup func(string) (string, bool)) *Service {
	s.lookup = lookup
	return s
}

// Bind reads the key, derives the deployer address and opens a session on
// the network
func (s *Service) Bind(ctx context.Context, network *domain.NetworkContext) (*usecase.SignerBinding, error) {
	envVar, raw, ok := s.credential()
	if !ok {
		return &usecase.SignerBinding{Missing: &domain.MissingCredential{EnvVar: s.envVars[0]}}, nil
	}

	key, err := parsePrivateKey(raw)
	if err != nil {
		return nil, domain.NewConfigurationError(envVar, "invalid private key", err)
	}

	backend, err := s.dial(ctx, network)
	if err != nil {
		return nil, err
	}

	session := blockchain.NewSession(backend, key, network.ChainID, s.opts, s.log)
	s.log.Debug("deployer bound", "address", session.From().Hex(), "network", network.Name, "env", envVar)

	return &usecase.SignerBinding{
		Identity: &domain.DeployerIdentity{Address: session.From(), Network: network},
		Deployer: session,
	}, nil
}

func (s *Service) credential() (envVar, value string, ok bool) {
	for _, name := range s.envVars {
		if v, found := s.lookup(name); found && strings.TrimSpace(v) != "" {
			return name, strings.TrimSpace(v), true
		}
	}
	return "", "", false
}

func parsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	hex := strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(hex) != 64 {
		return nil, fmt.Errorf("expected 32 bytes of hex, got %d characters", len(hex))
	}
	return crypto.HexToECDSA(hex)
}

var _ usecase.SignerBinder = (*Service)(nil)
