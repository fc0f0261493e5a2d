package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var (
		dryRun     bool
		yes        bool
		skipVerify bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <plan>",
		Short: "Run a deployment plan",
		Long: `Run a deployment plan against one network.

The plan is a built-in plan name, a plan under plans/ or a path to a YAML
plan file. Steps run strictly in order:
- deploy steps create a contract; its address is available to later steps
- verify steps submit the sources of an earlier deployment to the explorer
- call steps invoke a configuration method on an earlier deployment

Every artifact and argument count is checked before the first transaction.
The first failing deploy or call step aborts the run; failed verifications
are reported and the run continues.

The deployer key is read from PV_KEY (or PRIVATE_KEY), or from the variable
named by credential_env in sling.toml. Without a key the command prints
guidance and exits with status 2 before anything is sent.

Examples:
  # Deploy the Sablier lockup periphery to the default network
  sling deploy lockup-periphery

  # Deploy the ZK gateway to a specific network without prompting
  sling deploy zk-gateway --network zkSyncMainnet --yes

  # Check artifacts and arguments without sending transactions
  sling deploy plans/gateway.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan, err := app.ShowPlan.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			params := usecase.RunPlanParams{
				Plan:        plan.Plan,
				NetworkName: app.Config.NetworkName,
				DryRun:      dryRun,
				SkipVerify:  skipVerify,
				Confirm:     !yes && !app.Config.NonInteractive && !app.Config.JSON,
			}

			result, runErr := app.RunPlan.Run(cmd.Context(), params)
			if result == nil {
				return runErr
			}

			if result.MissingCredential != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.FormatWarning(result.MissingCredential.Guidance()))
				return &ExitError{Code: ExitMissingCredential, Err: result.MissingCredential, Silent: true}
			}

			if app.Config.JSON {
				if err := render.RenderJSON(cmd.OutOrStdout(), newDeployOutput(result)); err != nil {
					return err
				}
			}

			renderer := render.NewDeployRenderer(cmd.OutOrStdout())
			if runErr != nil {
				if !app.Config.JSON {
					renderer.RenderAbort(cmd.ErrOrStderr(), result)
				}
				if errors.Is(runErr, domain.ErrConfiguration) {
					return runErr
				}
				return fmt.Errorf("deployment aborted: %w", runErr)
			}

			if app.Config.JSON {
				return nil
			}
			return renderer.Render(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve network, credential and artifacts without sending transactions")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip explorer verification steps")
	cmd.Flags().String("settle-delay", "", "Wait this long after deployment before submitting verification (default 20s)")
	cmd.Flags().String("confirmation-timeout", "", "Give up waiting for a transaction receipt after this long (default 10m)")

	return cmd
}

// deployOutput is the JSON form of a plan run
type deployOutput struct {
	*usecase.RunPlanResult
	Error      string `json:"error,omitempty"`
	FailedStep *int   `json:"failedStep,omitempty"`
}

func newDeployOutput(result *usecase.RunPlanResult) deployOutput {
	out := deployOutput{RunPlanResult: result}
	if result.Error != nil {
		out.Error = result.Error.Error()
	}
	if result.FailedStep != nil {
		step := result.FailedStep.Index + 1
		out.FailedStep = &step
	}
	return out
}
