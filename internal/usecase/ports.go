package usecase

import (
	"context"
	"time"

	"github.com/trebuchet-org/sling/internal/domain"
)

// NetworkResolver resolves network names to network contexts
type NetworkResolver interface {
	ResolveNetwork(ctx context.Context, networkName string) (*domain.NetworkContext, error)
	GetNetworks(ctx context.Context) []string
}

// SignerBinding is the outcome of binding a credential to a network. Exactly
// one of Identity or Missing is set.
type SignerBinding struct {
	Identity *domain.DeployerIdentity
	// Deployer submits transactions signed by Identity
	Deployer ContractDeployer
	Missing  *domain.MissingCredential
}

// SignerBinder produces the deployer identity for a network. A missing
// credential is reported through SignerBinding.Missing, not as an error.
type SignerBinder interface {
	Bind(ctx context.Context, network *domain.NetworkContext) (*SignerBinding, error)
}

// ArtifactLoader resolves compiled contracts by logical name
type ArtifactLoader interface {
	Load(ctx context.Context, name string) (*domain.ContractArtifact, error)
}

// ContractDeployer submits transactions on behalf of a bound identity
type ContractDeployer interface {
	Deploy(ctx context.Context, artifact *domain.ContractArtifact, args []any) (*domain.DeployedContract, error)
	Call(ctx context.Context, target *domain.DeployedContract, method string, args []any) (*domain.CallResult, error)
}

// ArgumentEncoder converts wired arguments into ABI encodings
type ArgumentEncoder interface {
	// EncodeConstructorArgs returns the hex ABI encoding of the constructor
	// arguments, without 0x prefix
	EncodeConstructorArgs(artifact *domain.ContractArtifact, args []any) (string, error)
	// CheckArity returns an error when args does not match the constructor,
	// or the named method when method is not empty
	CheckArity(artifact *domain.ContractArtifact, method string, args int) error
}

// ContractVerifier submits source verification requests to an explorer
type ContractVerifier interface {
	// Verify performs exactly one submission and never returns an error:
	// failures are reported in the outcome
	Verify(ctx context.Context, request *domain.VerificationRequest) domain.VerificationOutcome
	CheckStatus(ctx context.Context, network *domain.NetworkContext, guid string) (*VerificationStatusResult, error)
}

// VerificationStatusResult is the explorer's answer to a status query
type VerificationStatusResult struct {
	GUID     string `json:"guid"`
	Pending  bool   `json:"pending"`
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// Sleeper waits for a duration or until the context is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContractSelector picks one artifact among several candidates
type ContractSelector interface {
	SelectContract(ctx context.Context, name string, candidates []*domain.ContractArtifact) (*domain.ContractArtifact, error)
}

// Confirmer asks the operator before irreversible actions
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// PlanRepository provides deployment plans by name or file
type PlanRepository interface {
	GetPlan(ctx context.Context, nameOrPath string) (*domain.Plan, error)
	ListPlans(ctx context.Context) []*domain.Plan
}

// Progress tracking interfaces

// ProgressStage names an orchestration progress event
type ProgressStage string

const (
	StagePlanStarted          ProgressStage = "plan_started"
	StageNetworkResolved      ProgressStage = "network_resolved"
	StageSignerBound          ProgressStage = "signer_bound"
	StageStepStarting         ProgressStage = "step_starting"
	StageDeploymentBanner     ProgressStage = "deployment_banner"
	StageContractDeployed     ProgressStage = "contract_deployed"
	StageVerificationStarting ProgressStage = "verification_starting"
	StageVerificationFinished ProgressStage = "verification_finished"
	StageCallCompleted        ProgressStage = "call_completed"
	StageRunAborted           ProgressStage = "run_aborted"
	StageRunCompleted         ProgressStage = "run_completed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    ProgressStage
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata any
}

// DeploymentBanner is the metadata of a deployment_banner event
type DeploymentBanner struct {
	Contract        string
	ChainID         uint64
	Network         string
	DeployerAddress string
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
