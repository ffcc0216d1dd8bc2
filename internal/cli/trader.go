package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"zoe-trader/internal/models"
	"zoe-trader/internal/notify"
	"zoe-trader/internal/trading"
	"zoe-trader/pkg/utils"
)

// addTraderCommands adds daemon control commands.
func addTraderCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trader",
		Short: "Trading daemon control",
		Long:  "Start and inspect the session-aware trading daemon.",
	}

	cmd.AddCommand(newTraderStartCmd(app))
	cmd.AddCommand(newTraderStatusCmd(app))
	cmd.AddCommand(newTraderResetCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTraderStartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the trading daemon in the foreground",
		Long: `Start the trading daemon.

The daemon will:
- Classify the market session on every tick
- Emit pre-market briefings at 15, 10 and 5 minutes before the open
- Gate market-open scans behind the daily trade ceiling and approved strategies

The daemon runs until interrupted (Ctrl-C).`,
		Example: `  zoe trader start
  zoe trader start --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			schedCfg := trading.SchedulerConfig{
				TickInterval:    app.Config.Trader.TickInterval(),
				MaxTradesPerDay: app.Config.Trader.MaxTradesPerDay,
				Watchlist:       app.Config.Trader.Watchlist,
				DryRun:          dryRun || app.Config.Trader.DryRun,
			}

			output.Bold("Starting Zoe Trading Daemon")
			output.Println()
			output.Printf("  Tick interval:      %s\n", schedCfg.TickInterval)
			output.Printf("  Max trades per day: %d\n", schedCfg.MaxTradesPerDay)
			output.Println()

			if schedCfg.DryRun {
				output.Warning("DRY RUN MODE - downstream execution will log, not act")
				output.Println()
			}
			if app.Config.IsPaperMode() {
				output.Warning("PAPER TRADING MODE")
				output.Println()
			}

			// Foreground run always gets a terminal channel
			app.Notifier.AddChannel(notify.NewTerminalNotifier())

			scheduler := trading.NewScheduler(
				schedCfg,
				app.Clock,
				app.Store,
				app.Store,
				app.Store,
				app.Notifier,
				app.Logger,
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			output.Success("✓ Daemon started")
			output.Dim("Press Ctrl-C to stop")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			output.Println()
			output.Info("Stopping daemon...")
			scheduler.Stop(ctx)
			output.Success("✓ Daemon stopped")
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "log downstream execution instead of acting")
	return cmd
}

func newTraderStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state derived from the clock and store",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			now := time.Now()

			session := app.Clock.SessionAt(now)

			tradesToday := 0
			strategies := 0
			hasPlan := false
			if app.Store != nil {
				today := now.Format("2006-01-02")
				if n, err := app.Store.CountTradesForDate(ctx, today); err == nil {
					tradesToday = n
				}
				if approved, err := app.Store.GetApprovedStrategies(ctx); err == nil {
					strategies = len(approved)
				}
				if plan, err := app.Store.GetPlanForDate(ctx, today); err == nil && plan != nil {
					hasPlan = true
				}
			}

			guard := trading.NewScanGuard(app.Config.Trader.MaxTradesPerDay)
			result := guard.Check(trading.GuardState{
				TradesToday:        tradesToday,
				ApprovedStrategies: strategies,
			})

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"session":      session,
					"trades_today": tradesToday,
					"max_trades":   app.Config.Trader.MaxTradesPerDay,
					"strategies":   strategies,
					"has_plan":     hasPlan,
					"scan_allowed": result.ShouldScan,
					"block_reason": result.BlockReason,
				})
			}

			output.Bold("Zoe Trader Status")
			output.Println()
			output.Printf("  Session:     %s\n", output.SessionStatus(string(session)))
			if session == models.SessionPreMarket {
				output.Printf("  To open:     %s\n", utils.FormatCountdown(app.Clock.MinutesToOpen(now)))
			}
			output.Printf("  Trades:      %d / %d today\n", tradesToday, app.Config.Trader.MaxTradesPerDay)
			output.Printf("  Strategies:  %d approved\n", strategies)
			output.Printf("  Daily plan:  %v\n", hasPlan)
			if result.ShouldScan {
				output.Success("  Scan guard:  open")
			} else {
				output.Warning("  Scan guard:  blocked (%s)", result.BlockReason)
			}
			return nil
		},
	}
}

func newTraderResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-daily",
		Short: "Run the start-of-day reset against a fresh scheduler",
		Long: `Reset per-day scheduler state.

Clears the trade counter, last briefing and daily plan snapshot, and writes
a DAILY_RESET audit event. Intended to be invoked by the morning cron before
pre-market.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			scheduler := trading.NewScheduler(
				trading.SchedulerConfig{
					TickInterval:    app.Config.Trader.TickInterval(),
					MaxTradesPerDay: app.Config.Trader.MaxTradesPerDay,
				},
				app.Clock,
				app.Store,
				app.Store,
				app.Store,
				app.Notifier,
				app.Logger,
			)
			scheduler.ResetDaily(cmd.Context())

			output.Success("✓ Daily state reset")
			return nil
		},
	}
}
