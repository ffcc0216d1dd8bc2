package trading

import (
	"fmt"
	"time"

	"zoe-trader/internal/models"
)

// fallbackContext is used when no daily plan is loaded.
const fallbackContext = "No market context available."

// BriefingTypeFor maps minutes-until-open to a briefing threshold.
// Thresholds are inclusive and evaluated closest-first, so the tightest
// bucket wins when a tick lands on a boundary.
func BriefingTypeFor(minutesLeft int) models.BriefingType {
	switch {
	case minutesLeft <= 0:
		return models.BriefingAtOpen
	case minutesLeft <= 5:
		return models.Briefing5Min
	case minutesLeft <= 10:
		return models.Briefing10Min
	case minutesLeft <= 15:
		return models.Briefing15Min
	default:
		return models.BriefingNone
	}
}

// BriefingGenerator builds pre-market briefings from the daily plan.
type BriefingGenerator struct{}

// NewBriefingGenerator creates a briefing generator.
func NewBriefingGenerator() *BriefingGenerator {
	return &BriefingGenerator{}
}

// Generate builds the briefing for a threshold. Content is deterministic
// given the plan: same inputs, same briefing.
func (g *BriefingGenerator) Generate(btype models.BriefingType, now time.Time, minutesLeft int, plan *models.DailyPlan) *models.Briefing {
	b := &models.Briefing{
		Type:          btype,
		Timestamp:     now,
		MinutesToOpen: minutesLeft,
		MarketContext: fallbackContext,
	}

	if plan != nil {
		b.Watchlist = plan.Watchlist
		b.ProposedPlays = plan.ProposedPlays
		if plan.MarketContext != "" {
			b.MarketContext = plan.MarketContext
		}
	}

	b.Summary = g.summary(btype, len(b.Watchlist), len(b.ProposedPlays))
	return b
}

// summary renders the per-threshold template. The four thresholds produce
// four distinct messages that tighten as the open approaches.
func (g *BriefingGenerator) summary(btype models.BriefingType, watching, plays int) string {
	switch btype {
	case models.Briefing15Min:
		return fmt.Sprintf(
			"Morning briefing: 15 minutes to the open. Tracking %d symbols with %d proposed plays. Reviewing overnight context now.",
			watching, plays)
	case models.Briefing10Min:
		return fmt.Sprintf(
			"10 minutes to the open. Watchlist locked at %d symbols, %d plays staged. Final levels being marked.",
			watching, plays)
	case models.Briefing5Min:
		return fmt.Sprintf(
			"5 minutes. %d symbols on watch, %d plays ready. Standing by for the opening print.",
			watching, plays)
	case models.BriefingAtOpen:
		return fmt.Sprintf(
			"Market is open. Switching to scan mode: %d symbols, %d plays queued for shortlist and decision.",
			watching, plays)
	default:
		return ""
	}
}
