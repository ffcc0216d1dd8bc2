package cli

import (
	"time"

	"github.com/spf13/cobra"

	"zoe-trader/internal/errors"
	"zoe-trader/internal/models"
)

// addPlanCommands adds daily plan management commands.
func addPlanCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Daily trading plan management",
		Long:  "Create and inspect the daily plan consumed by pre-market briefings.",
	}

	cmd.AddCommand(newPlanShowCmd(app))
	cmd.AddCommand(newPlanInitCmd(app))
	cmd.AddCommand(newPlanContextCmd(app))
	cmd.AddCommand(newPlanAddPlayCmd(app))

	rootCmd.AddCommand(cmd)
}

func newPlanShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the plan for a date (default: today)",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			date, _ := cmd.Flags().GetString("date")
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			plan, err := app.Store.GetPlanForDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			if plan == nil {
				output.Warning("No plan for %s", date)
				return nil
			}

			if output.IsJSON() {
				return output.JSON(plan)
			}

			output.Bold("Plan for %s", plan.PlanDate)
			output.Println()
			output.Printf("  Watchlist: %v\n", plan.Watchlist)
			output.Printf("  Context:   %s\n", plan.MarketContext)
			if len(plan.ProposedPlays) > 0 {
				output.Println()
				output.Info("Proposed plays:")
				for _, play := range plan.ProposedPlays {
					output.Printf("  %-5s %-8s entry %.2f  stop %.2f  target %.2f  %s\n",
						play.Side, play.Symbol, play.Entry, play.StopLoss, play.Target, play.Thesis)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "plan date (YYYY-MM-DD)")
	return cmd
}

func newPlanInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create today's plan from the configured watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			marketContext, _ := cmd.Flags().GetString("context")

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			plan := &models.DailyPlan{
				PlanDate:      time.Now().Format("2006-01-02"),
				Watchlist:     app.Config.Trader.Watchlist,
				MarketContext: marketContext,
			}
			if err := app.Store.SavePlan(cmd.Context(), plan); err != nil {
				return err
			}

			output.Success("✓ Plan created for %s (%d symbols)", plan.PlanDate, len(plan.Watchlist))
			return nil
		},
	}

	cmd.Flags().String("context", "", "market context note")
	return cmd
}

func newPlanContextCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-context <note>",
		Short: "Set the market context note on today's plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			today := time.Now().Format("2006-01-02")
			if err := app.Store.SetPlanContext(cmd.Context(), today, args[0]); err != nil {
				return err
			}

			output.Success("✓ Context updated")
			return nil
		},
	}
	return cmd
}

func newPlanAddPlayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-play <symbol>",
		Short: "Attach a proposed play to today's plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			side, _ := cmd.Flags().GetString("side")
			entry, _ := cmd.Flags().GetFloat64("entry")
			stop, _ := cmd.Flags().GetFloat64("stop")
			target, _ := cmd.Flags().GetFloat64("target")
			thesis, _ := cmd.Flags().GetString("thesis")

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			ctx := cmd.Context()
			today := time.Now().Format("2006-01-02")

			plan, err := app.Store.GetPlanForDate(ctx, today)
			if err != nil {
				return err
			}
			if plan == nil {
				plan = &models.DailyPlan{
					PlanDate:  today,
					Watchlist: app.Config.Trader.Watchlist,
				}
			}

			plan.ProposedPlays = append(plan.ProposedPlays, models.ProposedPlay{
				Symbol:   args[0],
				Side:     models.TradeSide(side),
				Entry:    entry,
				StopLoss: stop,
				Target:   target,
				Thesis:   thesis,
			})
			if err := app.Store.SavePlan(ctx, plan); err != nil {
				return err
			}

			output.Success("✓ Play added: %s %s", side, args[0])
			return nil
		},
	}

	cmd.Flags().String("side", "BUY", "play side (BUY or SELL)")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("stop", 0, "stop-loss price")
	cmd.Flags().Float64("target", 0, "target price")
	cmd.Flags().String("thesis", "", "trade thesis")
	return cmd
}
