package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
)

// VerifyContract re-submits source verification for an already deployed
// contract. It needs no credential.
type VerifyContract struct {
	networks  NetworkResolver
	artifacts ArtifactLoader
	encoder   ArgumentEncoder
	verifier  ContractVerifier
	progress  ProgressSink
}

// NewVerifyContract creates a new VerifyContract use case
func NewVerifyContract(
	networks NetworkResolver,
	artifacts ArtifactLoader,
	encoder ArgumentEncoder,
	verifier ContractVerifier,
	progress ProgressSink,
) *VerifyContract {
	return &VerifyContract{
		networks:  networks,
		artifacts: artifacts,
		encoder:   encoder,
		verifier:  verifier,
		progress:  progress,
	}
}

// VerifyContractParams contains parameters for a standalone verification
type VerifyContractParams struct {
	NetworkName string
	Artifact    string
	Address     string
	Args        []string
}

// VerifyContractResult contains the outcome of the single attempt
type VerifyContractResult struct {
	Network  *domain.NetworkContext
	Artifact *domain.ContractArtifact
	Outcome  domain.VerificationOutcome
}

// Run performs one verification attempt. Explorer failures are reported in
// the outcome; only bad input is an error.
func (uc *VerifyContract) Run(ctx context.Context, params VerifyContractParams) (*VerifyContractResult, error) {
	network, err := uc.networks.ResolveNetwork(ctx, params.NetworkName)
	if err != nil {
		return nil, err
	}

	address, err := domain.NormalizeAddress(params.Address)
	if err != nil {
		return nil, err
	}

	artifact, err := uc.artifacts.Load(ctx, params.Artifact)
	if err != nil {
		return nil, err
	}

	if err := uc.encoder.CheckArity(artifact, "", len(params.Args)); err != nil {
		return nil, err
	}

	args := lo.Map(params.Args, func(a string, _ int) any { return a })
	encoded, err := uc.encoder.EncodeConstructorArgs(artifact, args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   StageVerificationStarting,
		Message: artifact.Name,
		Spinner: true,
	})

	outcome := uc.verifier.Verify(ctx, &domain.VerificationRequest{
		Address:              address,
		ConstructorArguments: params.Args,
		EncodedArgs:          encoded,
		Artifact:             artifact,
		Network:              network,
	})

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageVerificationFinished,
		Message:  artifact.Name,
		Metadata: outcome,
	})

	return &VerifyContractResult{
		Network:  network,
		Artifact: artifact,
		Outcome:  outcome,
	}, nil
}

// Status queries the explorer once for a previously submitted request
func (uc *VerifyContract) Status(ctx context.Context, networkName, guid string) (*VerificationStatusResult, error) {
	network, err := uc.networks.ResolveNetwork(ctx, networkName)
	if err != nil {
		return nil, err
	}
	if network.Explorer.APIURL == "" {
		return nil, domain.NewConfigurationError("networks."+network.Name+".explorer.api_url", "no explorer configured", nil)
	}
	return uc.verifier.CheckStatus(ctx, network, guid)
}
