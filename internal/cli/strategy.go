package cli

import (
	"github.com/spf13/cobra"

	"zoe-trader/internal/errors"
	"zoe-trader/internal/models"
	"zoe-trader/internal/store"
)

// addStrategyCommands adds strategy management commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Strategy management",
		Long:  "Manage the strategy set; the daemon only scans with at least one approved strategy.",
	}

	cmd.AddCommand(newStrategyListCmd(app))
	cmd.AddCommand(newStrategyAddCmd(app))
	cmd.AddCommand(newStrategySetStatusCmd(app, "approve", models.StrategyApproved))
	cmd.AddCommand(newStrategySetStatusCmd(app, "retire", models.StrategyRetired))

	rootCmd.AddCommand(cmd)
}

func newStrategyListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			status, _ := cmd.Flags().GetString("status")

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			strategies, err := app.Store.GetStrategies(cmd.Context(), store.StrategyFilter{
				Status: models.StrategyStatus(status),
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(strategies)
			}

			if len(strategies) == 0 {
				output.Warning("No strategies found")
				return nil
			}
			for _, st := range strategies {
				marker := " "
				if st.Status == models.StrategyApproved {
					marker = output.Green("✓")
				}
				output.Printf("%s %-20s %-10s %s\n", marker, st.Name, st.Status, st.Description)
			}
			return nil
		},
	}

	cmd.Flags().String("status", "", "filter by status (DRAFT, APPROVED, RETIRED)")
	return cmd
}

func newStrategyAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a draft strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			description, _ := cmd.Flags().GetString("description")

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			strategy := &models.Strategy{
				Name:        args[0],
				Status:      models.StrategyDraft,
				Description: description,
			}
			if err := app.Store.SaveStrategy(cmd.Context(), strategy); err != nil {
				return err
			}

			output.Success("✓ Strategy added: %s (DRAFT)", strategy.Name)
			return nil
		},
	}

	cmd.Flags().String("description", "", "strategy description")
	return cmd
}

func newStrategySetStatusCmd(app *App, verb string, status models.StrategyStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <name>",
		Short: verb + " a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			ctx := cmd.Context()
			strategies, err := app.Store.GetStrategies(ctx, store.StrategyFilter{Name: args[0]})
			if err != nil {
				return err
			}
			if len(strategies) == 0 {
				return errors.Wrapf(errors.ErrStrategyNotFound, "name %s", args[0])
			}
			if err := app.Store.UpdateStrategyStatus(ctx, strategies[0].ID, status); err != nil {
				return err
			}

			output.Success("✓ Strategy %s: %s", args[0], status)
			return nil
		},
	}
}
