package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trebuchet-org/sling/internal/domain"
)

// RunPlan executes a deployment plan step by step against one network
type RunPlan struct {
	networks  NetworkResolver
	signer    SignerBinder
	artifacts ArtifactLoader
	encoder   ArgumentEncoder
	verifier  ContractVerifier
	confirmer Confirmer
	progress  ProgressSink
	log       *slog.Logger
}

// NewRunPlan creates a new run plan use case
func NewRunPlan(
	networks NetworkResolver,
	signer SignerBinder,
	artifacts ArtifactLoader,
	encoder ArgumentEncoder,
	verifier ContractVerifier,
	confirmer Confirmer,
	progress ProgressSink,
	log *slog.Logger,
) *RunPlan {
	return &RunPlan{
		networks:  networks,
		signer:    signer,
		artifacts: artifacts,
		encoder:   encoder,
		verifier:  verifier,
		confirmer: confirmer,
		progress:  progress,
		log:       log,
	}
}

// RunPlanParams contains parameters for a plan run
type RunPlanParams struct {
	Plan        *domain.Plan
	NetworkName string
	DryRun      bool // stop after preflight
	SkipVerify  bool
	Confirm     bool // ask before the first transaction
}

// RunPlanResult contains the result of a plan run. On abort it carries the
// failing step and everything deployed before it.
type RunPlanResult struct {
	Plan              *domain.Plan                 `json:"plan"`
	Network           *domain.NetworkContext       `json:"network,omitempty"`
	Deployer          *domain.DeployerIdentity     `json:"deployer,omitempty"`
	State             domain.RunState              `json:"state"`
	Transitions       []domain.RunState            `json:"-"`
	Deployed          []*domain.DeployedContract   `json:"deployed"`
	Verifications     []domain.VerificationOutcome `json:"verifications,omitempty"`
	Calls             []*domain.CallResult         `json:"calls,omitempty"`
	FailedStep        *domain.StepError            `json:"-"`
	Error             error                        `json:"-"`
	MissingCredential *domain.MissingCredential    `json:"-"`
	DryRun            bool                         `json:"dryRun,omitempty"`
	Cancelled         bool                         `json:"cancelled,omitempty"`
}

// Succeeded reports whether every fatal step completed
func (r *RunPlanResult) Succeeded() bool {
	return r.State == domain.StateDone
}

// DeployedByName returns the deployment registered under name
func (r *RunPlanResult) DeployedByName(name string) *domain.DeployedContract {
	for _, d := range r.Deployed {
		if d.Name == name {
			return d
		}
	}
	return nil
}

type planRun struct {
	*RunPlan
	result   *RunPlanResult
	deployer ContractDeployer
	loaded   map[string]*domain.ContractArtifact // keyed by step output name
	deployed map[string]*domain.DeployedContract
}

// Run executes the plan. Steps run strictly in declared order; the first fatal
// failure stops the run. Verification failures are recorded and never fatal.
func (uc *RunPlan) Run(ctx context.Context, params RunPlanParams) (*RunPlanResult, error) {
	if params.Plan == nil {
		return nil, fmt.Errorf("no plan given")
	}

	plan := params.Plan
	if params.SkipVerify {
		plan = plan.WithoutVerification()
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan %s: %w", plan.Name, err)
	}

	run := &planRun{
		RunPlan:  uc,
		result:   &RunPlanResult{Plan: plan, DryRun: params.DryRun},
		loaded:   make(map[string]*domain.ContractArtifact),
		deployed: make(map[string]*domain.DeployedContract),
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StagePlanStarted,
		Total:    len(plan.Steps),
		Message:  plan.Name,
		Metadata: run.result,
	})

	// Resolving
	run.transition(domain.StateResolving)
	network, err := uc.networks.ResolveNetwork(ctx, params.NetworkName)
	if err != nil {
		return run.abort(ctx, err)
	}
	run.result.Network = network
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageNetworkResolved,
		Message:  network.String(),
		Metadata: network,
	})

	// Binding
	run.transition(domain.StateBinding)
	binding, err := uc.signer.Bind(ctx, network)
	if err != nil {
		return run.abort(ctx, err)
	}
	if binding.Missing != nil {
		// Soft fail: guidance only, no artifacts are loaded and nothing is sent
		run.result.MissingCredential = binding.Missing
		run.transition(domain.StateAborted)
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageRunAborted,
			Message:  binding.Missing.Guidance(),
			Metadata: binding.Missing,
		})
		return run.result, nil
	}
	run.deployer = binding.Deployer
	run.result.Deployer = binding.Identity
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageSignerBound,
		Message:  binding.Identity.Address.Hex(),
		Metadata: binding.Identity,
	})
	uc.log.Debug("deployer bound", "address", binding.Identity.Address.Hex(), "network", network.Name)

	// Preflight
	run.transition(domain.StatePreflight)
	if err := run.preflight(ctx); err != nil {
		return run.abort(ctx, err)
	}

	if params.DryRun {
		run.transition(domain.StateDone)
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageRunCompleted,
			Message:  "dry run: preflight passed, nothing was sent",
			Metadata: run.result,
		})
		return run.result, nil
	}

	if params.Confirm && uc.confirmer != nil {
		ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Run plan %s on %s as %s?", plan.Name, network, binding.Identity.Address.Hex()))
		if err != nil {
			return run.abort(ctx, err)
		}
		if !ok {
			run.result.Cancelled = true
			run.transition(domain.StateAborted)
			uc.progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageRunAborted,
				Message: "cancelled by operator",
			})
			return run.result, nil
		}
	}

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return run.abort(ctx, &domain.StepError{Index: i, Step: step, Err: err})
		}

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    StageStepStarting,
			Current:  i + 1,
			Total:    len(plan.Steps),
			Message:  step.Label(),
			Metadata: step,
		})

		var stepErr error
		switch step.Kind {
		case domain.StepDeploy:
			run.transition(domain.StateDeploying)
			stepErr = run.deploy(ctx, i, step)
		case domain.StepVerify:
			run.transition(domain.StateVerifying)
			run.verify(ctx, i, step)
		case domain.StepCall:
			run.transition(domain.StateConfiguring)
			stepErr = run.call(ctx, i, step)
		}

		if stepErr != nil {
			return run.abort(ctx, &domain.StepError{Index: i, Step: step, Err: stepErr})
		}
	}

	run.transition(domain.StateDone)
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageRunCompleted,
		Total:    len(plan.Steps),
		Message:  fmt.Sprintf("%d contracts deployed", len(run.result.Deployed)),
		Metadata: run.result,
	})
	return run.result, nil
}

func (r *planRun) transition(state domain.RunState) {
	r.result.State = state
	r.result.Transitions = append(r.result.Transitions, state)
}

// abort moves the run to the aborted state. A *domain.StepError in err
// identifies the failing step.
func (r *planRun) abort(ctx context.Context, err error) (*RunPlanResult, error) {
	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		r.result.FailedStep = stepErr
	}
	r.result.Error = err
	r.transition(domain.StateAborted)

	r.log.Debug("run aborted", "error", err, "deployed", len(r.result.Deployed))
	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageRunAborted,
		Message:  err.Error(),
		Metadata: r.result,
	})
	return r.result, err
}

// preflight loads every artifact a deploy step needs and checks argument
// counts against the ABI before any transaction is sent.
func (r *planRun) preflight(ctx context.Context) error {
	for i, step := range r.result.Plan.Steps {
		switch step.Kind {
		case domain.StepDeploy:
			artifact, err := r.artifacts.Load(ctx, step.Artifact)
			if err != nil {
				return &domain.StepError{Index: i, Step: step, Err: err}
			}
			if err := r.encoder.CheckArity(artifact, "", len(step.Args)); err != nil {
				return &domain.StepError{Index: i, Step: step, Err: err}
			}
			r.loaded[step.OutputName()] = artifact
		case domain.StepCall:
			// Validate guarantees the target is an earlier deploy step
			artifact := r.loaded[step.Target]
			if err := r.encoder.CheckArity(artifact, step.Method, len(step.Args)); err != nil {
				return &domain.StepError{Index: i, Step: step, Err: err}
			}
		}
	}
	return nil
}

func (r *planRun) deploy(ctx context.Context, index int, step domain.Step) error {
	name := step.OutputName()
	artifact := r.loaded[name]

	args, err := ResolveArgs(step.Args, r.deployed)
	if err != nil {
		return err
	}

	network := r.result.Network
	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageDeploymentBanner,
		Current:  index + 1,
		Total:    len(r.result.Plan.Steps),
		Message:  name,
		Spinner:  true,
		Metadata: DeploymentBanner{
			Contract:        name,
			ChainID:         network.ChainID,
			Network:         network.Name,
			DeployerAddress: r.result.Deployer.Address.Hex(),
		},
	})

	deployed, err := r.deployer.Deploy(ctx, artifact, args)
	if err != nil {
		if !errors.Is(err, domain.ErrDeploymentFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrDeploymentFailed, err)
		}
		return err
	}
	deployed.Name = name
	deployed.Network = network
	deployed.Artifact = artifact
	deployed.Args = args

	r.deployed[name] = deployed
	r.result.Deployed = append(r.result.Deployed, deployed)

	r.log.Info("contract deployed", "contract", name, "address", deployed.Address, "tx", deployed.TxHash, "gas", deployed.GasUsed)
	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageContractDeployed,
		Current:  index + 1,
		Total:    len(r.result.Plan.Steps),
		Message:  fmt.Sprintf("%s deployed to: %s", name, deployed.Address),
		Metadata: deployed,
	})
	return nil
}

func (r *planRun) verify(ctx context.Context, index int, step domain.Step) {
	deployed := r.deployed[step.Target]

	var outcome domain.VerificationOutcome
	encoded, err := r.encoder.EncodeConstructorArgs(deployed.Artifact, deployed.Args)
	if err != nil {
		outcome = domain.VerificationOutcome{
			Address: deployed.Address,
			Status:  domain.VerificationFailed,
			Message: fmt.Sprintf("failed to encode constructor arguments: %v", err),
		}
	} else {
		r.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageVerificationStarting,
			Current: index + 1,
			Total:   len(r.result.Plan.Steps),
			Message: deployed.Name,
			Spinner: true,
		})
		outcome = r.verifier.Verify(ctx, &domain.VerificationRequest{
			Address:              deployed.Address,
			ConstructorArguments: StringifyArgs(deployed.Args),
			EncodedArgs:          encoded,
			Artifact:             deployed.Artifact,
			Network:              r.result.Network,
		})
	}

	if outcome.Status == domain.VerificationFailed {
		r.log.Warn("verification failed", "contract", deployed.Name, "address", deployed.Address, "reason", outcome.Message)
	}
	r.result.Verifications = append(r.result.Verifications, outcome)
	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageVerificationFinished,
		Current:  index + 1,
		Total:    len(r.result.Plan.Steps),
		Message:  deployed.Name,
		Metadata: outcome,
	})
}

func (r *planRun) call(ctx context.Context, index int, step domain.Step) error {
	target := r.deployed[step.Target]

	args, err := ResolveArgs(step.Args, r.deployed)
	if err != nil {
		return err
	}

	result, err := r.deployer.Call(ctx, target, step.Method, args)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigurationCallFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrConfigurationCallFailed, err)
		}
		return err
	}

	r.result.Calls = append(r.result.Calls, result)
	r.log.Info("configuration call mined", "target", target.Name, "method", step.Method, "tx", result.TxHash)
	r.progress.OnProgress(ctx, ProgressEvent{
		Stage:    StageCallCompleted,
		Current:  index + 1,
		Total:    len(r.result.Plan.Steps),
		Message:  fmt.Sprintf("%s.%s(%s)", target.Name, step.Method, joinArgs(args)),
		Metadata: result,
	})
	return nil
}

func joinArgs(args []any) string {
	return strings.Join(StringifyArgs(args), ", ")
}
