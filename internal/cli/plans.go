package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/sling/internal/cli/render"
)

// NewPlansCmd creates the plans command
func NewPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List available deployment plans",
		Long: `List the built-in deployment plans and the plans found under plans/ in the
project. Use "sling plans show <plan>" to print the steps of one plan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plans := app.ListPlans.Run(cmd.Context())
			if app.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), plans)
			}
			return render.NewPlansRenderer(cmd.OutOrStdout()).RenderList(plans)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <plan>",
		Short: "Show the steps of a deployment plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowPlan.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.RenderJSON(cmd.OutOrStdout(), result.Plan)
			}
			return render.NewPlansRenderer(cmd.OutOrStdout()).Render(result)
		},
	})

	return cmd
}
