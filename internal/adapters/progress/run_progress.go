package progress

import (
	"context"
	"io"
	"log/slog"

	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// RunProgress prints orchestration events as they happen: the deployment
// banner, deployed addresses, verification outcomes and configuration calls.
type RunProgress struct {
	renderer *render.DeployRenderer
	spinner  *Spinner
	log      *slog.Logger
}

// NewRunProgress creates a progress sink that renders to out and spins on status
func NewRunProgress(out, status io.Writer, log *slog.Logger) *RunProgress {
	return &RunProgress{
		renderer: render.NewDeployRenderer(out),
		spinner:  NewSpinner(status),
		log:      log,
	}
}

// OnProgress renders one event
func (p *RunProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if !event.Spinner {
		if elapsed := p.spinner.Stop(); elapsed > 0 {
			p.log.Debug("stage finished", "stage", event.Stage, "elapsed", elapsed)
		}
	}

	switch event.Stage {
	case usecase.StagePlanStarted:
		if result, ok := event.Metadata.(*usecase.RunPlanResult); ok {
			p.renderer.PrintPlanHeader(result.Plan, result.DryRun)
		}
	case usecase.StageNetworkResolved:
		if network, ok := event.Metadata.(*domain.NetworkContext); ok {
			p.renderer.PrintNetwork(network)
		}
	case usecase.StageSignerBound:
		if identity, ok := event.Metadata.(*domain.DeployerIdentity); ok {
			p.renderer.PrintDeployer(identity)
		}
	case usecase.StageDeploymentBanner:
		if banner, ok := event.Metadata.(usecase.DeploymentBanner); ok {
			p.spinner.Stop()
			p.renderer.PrintDeploymentBanner(banner)
		} else {
			p.spinner.Info("Warning: wrong data-type in deployment banner")
		}
		p.spinner.Start("Deploying " + event.Message + "...")
	case usecase.StageContractDeployed:
		if deployed, ok := event.Metadata.(*domain.DeployedContract); ok {
			p.renderer.PrintDeployed(deployed)
		}
	case usecase.StageVerificationStarting:
		p.spinner.Start("Verifying " + event.Message + "...")
	case usecase.StageVerificationFinished:
		if outcome, ok := event.Metadata.(domain.VerificationOutcome); ok {
			p.renderer.PrintVerification(event.Message, outcome)
		}
	case usecase.StageCallCompleted:
		if result, ok := event.Metadata.(*domain.CallResult); ok {
			p.renderer.PrintCall(event.Message, result)
		}
	default:
		p.log.Debug("progress", "stage", event.Stage, "step", event.Current, "total", event.Total, "message", event.Message)
	}
}

// Info prints an info message
func (p *RunProgress) Info(message string) {
	p.spinner.Info(message)
}

// Error prints an error message
func (p *RunProgress) Error(message string) {
	p.spinner.Error(message)
}

// Ensure RunProgress implements ProgressSink
var _ usecase.ProgressSink = (*RunProgress)(nil)
