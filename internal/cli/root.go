// Package cli provides the command-line interface for the trading daemon.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zoe-trader/internal/config"
	"zoe-trader/internal/logging"
	"zoe-trader/internal/notify"
	"zoe-trader/internal/store"
	"zoe-trader/internal/trading"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-08-01"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Notifier *notify.MultiNotifier
	Clock    *trading.MarketClock
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Clock:  trading.NewMarketClock(),
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	// Initialize notifier channels from config
	app.Notifier = notify.NewMultiNotifier(&cfg.Notifications)

	rootCmd := &cobra.Command{
		Use:   "zoe",
		Short: "Zoe Trader - session-aware paper trading daemon",
		Long: `Zoe Trader is a session-aware autonomous paper trading daemon.

It tracks the market session on a fixed tick, emits pre-market briefings as
the open approaches, and gates intraday scans behind a daily trade ceiling
and the approved strategy set. Order execution stays with the external
broker pipeline.

Use 'zoe help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/zoe-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addTraderCommands(rootCmd, app)
	addPlanCommands(rootCmd, app)
	addStrategyCommands(rootCmd, app)
	addBriefingCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigShowCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Zoe Trader v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}

			output.Bold("Zoe Trader Configuration")
			output.Println()
			output.Printf("  Mode:               %s\n", app.Config.Trader.Mode)
			output.Printf("  Tick interval:      %s\n", app.Config.Trader.TickInterval())
			output.Printf("  Max trades per day: %d\n", app.Config.Trader.MaxTradesPerDay)
			output.Printf("  Dry run:            %v\n", app.Config.Trader.DryRun)
			output.Printf("  Watchlist:          %v\n", app.Config.Trader.Watchlist)
			output.Printf("  Store path:         %s\n", app.Config.Store.Path)
			output.Printf("  Notifications:      %v (level: %s)\n",
				app.Config.Notifications.Enabled, app.Config.Notifications.Level)
			return nil
		},
	}
}
