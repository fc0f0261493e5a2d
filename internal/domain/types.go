package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ExplorerConfig holds the source-code explorer endpoints for a network
type ExplorerConfig struct {
	APIURL     string `json:"apiUrl,omitempty"`
	BrowserURL string `json:"browserUrl,omitempty"`
	APIKey     string `json:"-"`
}

// NetworkContext identifies the network a run deploys to. It is created once
// at startup and not modified afterwards.
type NetworkContext struct {
	ChainID     uint64         `json:"chainId"`
	Name        string         `json:"name"`
	EndpointURL string         `json:"rpcUrl"`
	Explorer    ExplorerConfig `json:"explorer"`
}

func (n *NetworkContext) String() string {
	return fmt.Sprintf("%s (chain %d)", n.Name, n.ChainID)
}

// DeployerIdentity is the authorized account used for every transaction of a run
type DeployerIdentity struct {
	Address common.Address  `json:"address"`
	Network *NetworkContext `json:"-"`
}

// ContractArtifact is a compiled contract resolved by logical name
type ContractArtifact struct {
	Name            string  `json:"name"`
	SourceName      string  `json:"sourceName"` // e.g. "contracts/Gateway.sol"
	Path            string  `json:"path"`       // artifact JSON file on disk
	ABI             abi.ABI `json:"-"`
	Bytecode        []byte  `json:"-"`
	CompilerVersion string  `json:"compilerVersion,omitempty"`
	BuildInfoPath   string  `json:"buildInfoPath,omitempty"`
}

// FullName returns the fully qualified "source:Name" identifier
func (a *ContractArtifact) FullName() string {
	if a.SourceName == "" {
		return a.Name
	}
	return a.SourceName + ":" + a.Name
}

// Argument is one entry of a constructor or method argument template: either a
// literal value or a placeholder for the address of an earlier deployment.
type Argument struct {
	Value any    `json:"value,omitempty"`
	Ref   string `json:"ref,omitempty"`
}

// Lit creates a literal argument
func Lit(v any) Argument {
	return Argument{Value: v}
}

// Ref creates a placeholder argument resolved to the address deployed under name
func Ref(name string) Argument {
	return Argument{Ref: name}
}

// IsRef reports whether the argument is a placeholder
func (a Argument) IsRef() bool {
	return a.Ref != ""
}

func (a Argument) String() string {
	if a.IsRef() {
		return "<" + a.Ref + ">"
	}
	return fmt.Sprint(a.Value)
}

// DeployedContract is the immutable outcome of a successful deployment step
type DeployedContract struct {
	Name     string            `json:"name"`
	Address  string            `json:"address"`
	TxHash   string            `json:"txHash,omitempty"`
	GasUsed  uint64            `json:"gasUsed,omitempty"`
	Args     []any             `json:"args,omitempty"`
	Network  *NetworkContext   `json:"-"`
	Artifact *ContractArtifact `json:"-"`
}

// CallResult is the outcome of a configuration-method invocation
type CallResult struct {
	Target  string `json:"target"`
	Method  string `json:"method"`
	TxHash  string `json:"txHash"`
	GasUsed uint64 `json:"gasUsed,omitempty"`
}

// VerificationRequest is submitted to an explorer for one deployed contract
type VerificationRequest struct {
	Address              string
	ConstructorArguments []string
	EncodedArgs          string // hex ABI encoding without 0x prefix
	Artifact             *ContractArtifact
	Network              *NetworkContext
}

// VerificationStatus is the outcome class of a verification attempt
type VerificationStatus string

const (
	VerificationSubmitted VerificationStatus = "submitted" // accepted, verdict still pending
	VerificationVerified  VerificationStatus = "verified"
	VerificationFailed    VerificationStatus = "failed"
	VerificationSkipped   VerificationStatus = "skipped"
)

// VerificationOutcome is the result of a single verification attempt
type VerificationOutcome struct {
	Address string             `json:"address"`
	Status  VerificationStatus `json:"status"`
	GUID    string             `json:"guid,omitempty"`
	Message string             `json:"message,omitempty"`
	URL     string             `json:"url,omitempty"`
}

// Succeeded reports whether the explorer accepted the request
func (o VerificationOutcome) Succeeded() bool {
	return o.Status == VerificationSubmitted || o.Status == VerificationVerified
}

// RunState is a state of the orchestration state machine
type RunState string

const (
	StateResolving   RunState = "resolving"
	StateBinding     RunState = "binding"
	StatePreflight   RunState = "preflight"
	StateDeploying   RunState = "deploying"
	StateVerifying   RunState = "verifying"
	StateConfiguring RunState = "configuring"
	StateDone        RunState = "done"
	StateAborted     RunState = "aborted"
)

// IsTerminal reports whether no further transitions can happen from s
func (s RunState) IsTerminal() bool {
	return s == StateDone || s == StateAborted
}

// NormalizeAddress returns the checksummed hex form of an address string
func NormalizeAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s).Hex(), nil
}
