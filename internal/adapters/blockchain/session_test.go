package blockchain

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
)

const simulatedChainID = 1337

// Creation code returning a one byte runtime (STOP): every call succeeds
const stopInitCode = "6001600c60003960016000f300"

// Creation code returning a runtime that always reverts
const revertInitCode = "6005600c60003960056000f360006000fd"

const gatewayABI = `[
	{"type":"constructor","inputs":[{"name":"admin","type":"address"}]},
	{"type":"function","name":"setZkTokenMinter","inputs":[{"name":"minter","type":"address"}],"outputs":[]}
]`

// autoCommit mines a block after every submitted transaction
type autoCommit struct {
	simulated.Client
	sim *simulated.Backend
}

func (a *autoCommit) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := a.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	a.sim.Commit()
	return nil
}

func newSimulatedSession(t *testing.T, opts SessionOptions) (*Session, *simulated.Backend) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	sim := simulated.NewBackend(types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: balance},
	})
	t.Cleanup(func() { _ = sim.Close() })

	backend := &autoCommit{Client: sim.Client(), sim: sim}
	return NewSession(backend, key, simulatedChainID, opts, slog.New(slog.NewTextHandler(io.Discard, nil))), sim
}

func artifact(t *testing.T, name, initCode string) *domain.ContractArtifact {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(gatewayABI))
	require.NoError(t, err)
	return &domain.ContractArtifact{Name: name, ABI: parsed, Bytecode: common.FromHex(initCode)}
}

func TestSession_DeployAndCall(t *testing.T) {
	session, sim := newSimulatedSession(t, SessionOptions{ConfirmationTimeout: 10 * time.Second, GasLimitMultiplier: 1.2})
	ctx := context.Background()

	gateway := artifact(t, "ZkTokenGateway", stopInitCode)
	deployed, err := session.Deploy(ctx, gateway, []any{"0x69e5dc39e2bcb1c17053d2a4ee7caeaac5d36f96"})
	require.NoError(t, err)

	assert.Equal(t, "ZkTokenGateway", deployed.Name)
	assert.True(t, common.IsHexAddress(deployed.Address))
	assert.NotEmpty(t, deployed.TxHash)
	assert.NotZero(t, deployed.GasUsed)

	code, err := sim.Client().CodeAt(ctx, common.HexToAddress(deployed.Address), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)

	deployed.Artifact = gateway
	result, err := session.Call(ctx, deployed, "setZkTokenMinter", []any{session.From().Hex()})
	require.NoError(t, err)
	assert.Equal(t, "setZkTokenMinter", result.Method)
	assert.Equal(t, "ZkTokenGateway", result.Target)
	assert.NotEmpty(t, result.TxHash)
}

func TestSession_DeployRejectsBadArguments(t *testing.T) {
	session, _ := newSimulatedSession(t, SessionOptions{})

	_, err := session.Deploy(context.Background(), artifact(t, "ZkTokenGateway", stopInitCode), []any{"not-an-address"})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	_, err = session.Deploy(context.Background(), artifact(t, "ZkTokenGateway", stopInitCode), nil)
	assert.ErrorContains(t, err, "expects 1 arguments, got 0")
}

func TestSession_CallReverts(t *testing.T) {
	session, _ := newSimulatedSession(t, SessionOptions{})
	ctx := context.Background()

	reverting := artifact(t, "Reverter", revertInitCode)
	deployed, err := session.Deploy(ctx, reverting, []any{session.From().Hex()})
	require.NoError(t, err)

	deployed.Artifact = reverting
	_, err = session.Call(ctx, deployed, "setZkTokenMinter", []any{session.From().Hex()})
	assert.Error(t, err)
}

func TestSession_CallRequiresABI(t *testing.T) {
	session, _ := newSimulatedSession(t, SessionOptions{})

	_, err := session.Call(context.Background(), &domain.DeployedContract{Name: "X", Address: "0x01"}, "init", nil)
	assert.ErrorContains(t, err, "no ABI known for X")
}

func TestCheckChainID(t *testing.T) {
	_, sim := newSimulatedSession(t, SessionOptions{})

	assert.NoError(t, CheckChainID(context.Background(), sim.Client(), simulatedChainID))

	err := CheckChainID(context.Background(), sim.Client(), 324)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.ErrorContains(t, err, "expected 324, endpoint reports 1337")
}

func TestConnect_Unreachable(t *testing.T) {
	network := &domain.NetworkContext{Name: "local", ChainID: 31337, EndpointURL: "http://127.0.0.1:1"}

	_, err := Connect(context.Background(), network)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "networks.local.url", cfgErr.Key)
}
