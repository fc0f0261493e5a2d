package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeployRenderer renders plan runs
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// PrintPlanHeader prints the plan about to run
func (r *DeployRenderer) PrintPlanHeader(plan *domain.Plan, dryRun bool) {
	bold := color.New(color.Bold)
	gray := color.New(color.FgHiBlack)

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s\n", bold.Sprintf("🚀 Running plan %s", plan.Name))
	fmt.Fprintf(r.out, "%s\n", gray.Sprint(strings.Repeat("─", 50)))
	if plan.Description != "" {
		fmt.Fprintf(r.out, "  %s\n", plan.Description)
	}
	fmt.Fprintf(r.out, "  Steps:     %d (%d deployments)\n", len(plan.Steps), len(plan.DeploySteps()))
	if dryRun {
		fmt.Fprintf(r.out, "  Mode:      %s\n", color.New(color.FgYellow).Sprint("DRY_RUN"))
	} else {
		fmt.Fprintf(r.out, "  Mode:      %s\n", color.New(color.FgGreen).Sprint("LIVE"))
	}
}

// PrintNetwork prints the resolved network
func (r *DeployRenderer) PrintNetwork(network *domain.NetworkContext) {
	fmt.Fprintf(r.out, "  Network:   %s %s\n", color.New(color.FgBlue).Sprint(network.Name), color.New(color.FgHiBlack).Sprintf("(chain %d)", network.ChainID))
}

// PrintDeployer prints the bound deployer address
func (r *DeployRenderer) PrintDeployer(identity *domain.DeployerIdentity) {
	fmt.Fprintf(r.out, "  Deployer:  %s\n", color.New(color.FgCyan).Sprint(identity.Address.Hex()))
	fmt.Fprintln(r.out)
}

// PrintDeploymentBanner prints the contract/chainId/network/deployerAddress
// table shown before each deployment
func (r *DeployRenderer) PrintDeploymentBanner(banner usecase.DeploymentBanner) {
	t := newTable()
	t.AppendHeader(table.Row{"contract", "chainId", "network", "deployerAddress"})
	t.AppendRow(table.Row{banner.Contract, banner.ChainID, banner.Network, banner.DeployerAddress})
	fmt.Fprintln(r.out, t.Render())
}

// PrintDeployed prints the "<Name> deployed to: <address>" line
func (r *DeployRenderer) PrintDeployed(deployed *domain.DeployedContract) {
	fmt.Fprintf(r.out, "%s deployed to: %s\n", color.New(color.FgGreen, color.Bold).Sprint(deployed.Name), deployed.Address)
}

// PrintVerification prints the outcome of one verification attempt
func (r *DeployRenderer) PrintVerification(name string, outcome domain.VerificationOutcome) {
	status := cases.Title(language.English).String(string(outcome.Status))
	switch outcome.Status {
	case domain.VerificationSubmitted, domain.VerificationVerified:
		line := fmt.Sprintf("  ✓ Verification %s for %s", strings.ToLower(status), name)
		if outcome.GUID != "" && outcome.Status == domain.VerificationSubmitted {
			line += color.New(color.FgHiBlack).Sprintf(" (guid %s)", outcome.GUID)
		}
		color.New(color.FgGreen).Fprintln(r.out, line)
		if outcome.URL != "" {
			fmt.Fprintf(r.out, "    %s\n", outcome.URL)
		}
	case domain.VerificationSkipped:
		color.New(color.FgHiBlack).Fprintf(r.out, "  ⊘ %s verification of %s: %s\n", status, name, outcome.Message)
	default:
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Verification of %s failed: %s", name, outcome.Message)))
	}
}

// PrintCall prints a mined configuration call
func (r *DeployRenderer) PrintCall(message string, result *domain.CallResult) {
	fmt.Fprintf(r.out, "%s %s %s\n", color.New(color.FgGreen).Sprint("✓"), message, color.New(color.FgHiBlack).Sprintf("(tx %s)", result.TxHash))
}

// Render prints the final summary of a run
func (r *DeployRenderer) Render(result *usecase.RunPlanResult) error {
	if result.MissingCredential != nil {
		// Guidance goes to stderr from the command
		return nil
	}

	fmt.Fprintln(r.out)
	if len(result.Deployed) > 0 {
		verified := lo.SliceToMap(result.Verifications, func(o domain.VerificationOutcome) (string, domain.VerificationStatus) {
			return o.Address, o.Status
		})

		t := newTable()
		t.SetTitle("Deployed contracts")
		t.AppendHeader(table.Row{"Contract", "Address", "Verification", "Tx"})
		for _, d := range result.Deployed {
			status, ok := verified[d.Address]
			cell := "-"
			if ok {
				cell = verificationCell(status)
			}
			t.AppendRow(table.Row{d.Name, d.Address, cell, d.TxHash})
		}
		fmt.Fprintln(r.out, t.Render())
	}

	switch {
	case result.DryRun && result.State == domain.StateDone:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Dry run of %s passed preflight, nothing was sent", result.Plan.Name)))
	case result.Cancelled:
		fmt.Fprintln(r.out, FormatWarning("Cancelled before any transaction was sent"))
	case result.Succeeded():
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Plan %s completed: %d contracts deployed, %d calls", result.Plan.Name, len(result.Deployed), len(result.Calls))))
		if failed := lo.CountBy(result.Verifications, func(o domain.VerificationOutcome) bool { return o.Status == domain.VerificationFailed }); failed > 0 {
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("%d verification(s) failed; retry with `sling verify`", failed)))
		}
		for _, o := range result.Verifications {
			if o.Status == domain.VerificationSubmitted && o.GUID != "" {
				fmt.Fprintf(r.out, "Verdict for %s pending, check with: sling verify status %s\n", o.Address, o.GUID)
			}
		}
	}
	return nil
}

// RenderAbort prints the failing step and what was deployed before it, so a
// partial run can be resumed by hand
func (r *DeployRenderer) RenderAbort(w io.Writer, result *usecase.RunPlanResult) {
	if result.FailedStep != nil {
		fmt.Fprintf(w, "%s\n", color.New(color.FgRed, color.Bold).Sprintf("Step %d (%s) failed", result.FailedStep.Index+1, result.FailedStep.Step.Label()))
	}
	if len(result.Deployed) == 0 {
		return
	}
	fmt.Fprintln(w, "Already deployed in this run:")
	for _, d := range result.Deployed {
		fmt.Fprintf(w, "  %s: %s\n", d.Name, d.Address)
	}
}

func verificationCell(status domain.VerificationStatus) string {
	switch status {
	case domain.VerificationVerified:
		return color.New(color.FgGreen).Sprint("verified")
	case domain.VerificationSubmitted:
		return color.New(color.FgYellow).Sprint("submitted")
	case domain.VerificationFailed:
		return color.New(color.FgRed).Sprint("failed")
	default:
		return color.New(color.FgHiBlack).Sprint(string(status))
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}

var _ Renderer[*usecase.RunPlanResult] = (*DeployRenderer)(nil)
