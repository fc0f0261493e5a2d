package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <artifact> <address> [constructor-args...]",
		Short: "Verify a deployed contract on the network explorer",
		Long: `Submit the sources of an already deployed contract to the explorer of the
selected network. Constructor arguments are given in declaration order.

A single request is sent and never retried. "Already verified" answers are
reported as failures.

Examples:
  # Verify a contract deployed without arguments
  sling verify SablierV2MerkleLockupFactory 0x1234... --network abstractMainnet

  # Verify with constructor arguments
  sling verify ZkCappedMinter 0xabcd... 0x69e5DC39E2bCb1C17053d2A4ee7CAEAAc5D36f96 0x5678... 1000

  # Check the status of a submission
  sling verify status 3ig7xyq1ufkbk6tx3nn1gthvzqmhqjvxzqwmnvfbzibg2pcdhe`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.VerifyContract.Run(cmd.Context(), usecase.VerifyContractParams{
				NetworkName: app.Config.NetworkName,
				Artifact:    args[0],
				Address:     args[1],
				Args:        args[2:],
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				if err := render.RenderJSON(cmd.OutOrStdout(), result.Outcome); err != nil {
					return err
				}
			} else if err := render.NewVerifyRenderer(cmd.OutOrStdout()).Render(result); err != nil {
				return err
			}

			if result.Outcome.Status == domain.VerificationFailed {
				return &ExitError{Code: ExitFailure, Err: domain.ErrVerificationFailed, Silent: true}
			}
			return nil
		},
	}

	cmd.Flags().String("settle-delay", "0s", "Wait this long before submitting")

	cmd.AddCommand(newVerifyStatusCmd())
	return cmd
}

func newVerifyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <guid>",
		Short: "Check the status of a verification request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.VerifyContract.Status(cmd.Context(), app.Config.NetworkName, args[0])
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result)
			}
			return render.NewVerifyRenderer(cmd.OutOrStdout()).RenderStatus(result)
		},
	}
}
