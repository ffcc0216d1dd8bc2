package cli

import (
	"time"

	"github.com/spf13/cobra"

	"zoe-trader/internal/models"
	"zoe-trader/internal/trading"
	"zoe-trader/pkg/utils"
)

// addBriefingCommands adds briefing preview commands.
func addBriefingCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Briefing tools",
	}

	cmd.AddCommand(newBriefingPreviewCmd(app))

	rootCmd.AddCommand(cmd)
}

func newBriefingPreviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the briefing that would fire at N minutes to open",
		Long: `Render a briefing without mutating daemon state.

Uses today's plan from the store when one exists; otherwise falls back to
empty watchlist and plays.`,
		Example: `  zoe briefing preview --minutes 12
  zoe briefing preview --minutes 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			minutes, _ := cmd.Flags().GetInt("minutes")

			btype := trading.BriefingTypeFor(minutes)
			if btype == "" {
				output.Warning("No briefing due at %d minutes to open (first threshold is 15)", minutes)
				return nil
			}

			generator := trading.NewBriefingGenerator()
			now := time.Now()

			dailyPlan, _ := loadTodaysPlan(cmd, app)
			briefing := generator.Generate(btype, now, minutes, dailyPlan)

			if output.IsJSON() {
				return output.JSON(briefing)
			}

			output.Bold("Briefing preview (%s, %s)", btype, utils.FormatCountdown(minutes))
			output.Println()
			output.Println(briefing.Summary)
			output.Printf("  Watchlist: %v\n", briefing.Watchlist)
			output.Printf("  Plays:     %d\n", len(briefing.ProposedPlays))
			output.Printf("  Context:   %s\n", briefing.MarketContext)
			return nil
		},
	}

	cmd.Flags().Int("minutes", 15, "minutes to open")
	return cmd
}

// loadTodaysPlan fetches today's plan, tolerating a missing store.
func loadTodaysPlan(cmd *cobra.Command, app *App) (*models.DailyPlan, error) {
	if app.Store == nil {
		return nil, nil
	}
	today := time.Now().Format("2006-01-02")
	return app.Store.GetPlanForDate(cmd.Context(), today)
}
