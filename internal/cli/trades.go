package cli

import (
	"time"

	"github.com/spf13/cobra"

	"zoe-trader/internal/errors"
	"zoe-trader/internal/models"
	"zoe-trader/internal/store"
	"zoe-trader/pkg/utils"
)

// addTradeCommands adds trade record commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Trade execution records",
	}

	cmd.AddCommand(newTradesTodayCmd(app))
	cmd.AddCommand(newTradesRecordCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradesTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "List today's trade executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			now := time.Now()
			start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			trades, err := app.Store.GetTrades(cmd.Context(), store.TradeFilter{
				StartDate: start,
				EndDate:   now,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}

			if len(trades) == 0 {
				output.Dim("No trades recorded today")
				return nil
			}
			for _, t := range trades {
				tag := ""
				if t.DryRun {
					tag = output.Yellow(" [dry-run]")
				} else if t.IsPaper {
					tag = output.Yellow(" [paper]")
				}
				output.Printf("%s  %-5s %-8s x%-4d @ %s  (%s)%s\n",
					utils.FormatClock(t.ExecutedAt), t.Side, t.Symbol, t.Quantity,
					utils.FormatUSD(t.Price), t.Strategy, tag)
			}
			output.Println()
			output.Printf("Total: %d of %d allowed\n", len(trades), app.Config.Trader.MaxTradesPerDay)
			return nil
		},
	}
}

func newTradesRecordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <trade-id>",
		Short: "Record a trade execution reported by the external executor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol, _ := cmd.Flags().GetString("symbol")
			side, _ := cmd.Flags().GetString("side")
			qty, _ := cmd.Flags().GetInt("quantity")
			price, _ := cmd.Flags().GetFloat64("price")
			strategy, _ := cmd.Flags().GetString("strategy")

			if app.Store == nil {
				return errors.ErrStoreUnavailable
			}
			trade := &models.TradeRecord{
				TradeID:    args[0],
				Symbol:     symbol,
				Side:       models.TradeSide(side),
				Quantity:   qty,
				Price:      price,
				Strategy:   strategy,
				IsPaper:    app.Config.IsPaperMode(),
				DryRun:     app.Config.Trader.DryRun,
				ExecutedAt: time.Now(),
			}
			if err := app.Store.RecordTrade(cmd.Context(), trade); err != nil {
				return err
			}

			today := time.Now().Format("2006-01-02")
			count, err := app.Store.CountTradesForDate(cmd.Context(), today)
			if err != nil {
				return err
			}

			output.Success("✓ Trade recorded: %s", args[0])
			output.Printf("  Trades today: %d / %d\n", count, app.Config.Trader.MaxTradesPerDay)
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "traded symbol")
	cmd.Flags().String("side", "BUY", "trade side (BUY or SELL)")
	cmd.Flags().Int("quantity", 0, "quantity")
	cmd.Flags().Float64("price", 0, "fill price")
	cmd.Flags().String("strategy", "", "strategy name")
	return cmd
}
