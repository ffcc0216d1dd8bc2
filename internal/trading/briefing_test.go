package trading

import (
	"strings"
	"testing"
	"time"

	"zoe-trader/internal/models"
)

func TestBriefingTypeForThresholds(t *testing.T) {
	cases := []struct {
		minutesLeft int
		want        models.BriefingType
	}{
		{30, models.BriefingNone},
		{16, models.BriefingNone},
		{15, models.Briefing15Min},
		{11, models.Briefing15Min},
		{10, models.Briefing10Min},
		{6, models.Briefing10Min},
		{5, models.Briefing5Min},
		{1, models.Briefing5Min},
		{0, models.BriefingAtOpen},
		{-3, models.BriefingAtOpen},
	}

	for _, c := range cases {
		got := BriefingTypeFor(c.minutesLeft)
		if got != c.want {
			t.Errorf("BriefingTypeFor(%d) = %q, want %q", c.minutesLeft, got, c.want)
		}
	}
}

func TestGenerateWithoutPlanUsesFallbackContext(t *testing.T) {
	gen := NewBriefingGenerator()
	now := time.Date(2026, time.March, 3, 9, 15, 0, 0, time.UTC)

	b := gen.Generate(models.Briefing15Min, now, 15, nil)

	if b.MarketContext != fallbackContext {
		t.Errorf("MarketContext = %q, want fallback", b.MarketContext)
	}
	if len(b.Watchlist) != 0 || len(b.ProposedPlays) != 0 {
		t.Errorf("Expected empty watchlist and plays without a plan, got %d/%d",
			len(b.Watchlist), len(b.ProposedPlays))
	}
	if b.Type != models.Briefing15Min || b.MinutesToOpen != 15 {
		t.Errorf("Briefing header mismatch: type=%q minutes=%d", b.Type, b.MinutesToOpen)
	}
	if b.Summary == "" {
		t.Error("Expected a non-empty summary")
	}
}

func TestGenerateWithPlan(t *testing.T) {
	gen := NewBriefingGenerator()
	now := time.Date(2026, time.March, 3, 9, 20, 0, 0, time.UTC)
	plan := &models.DailyPlan{
		PlanDate:      "2026-03-03",
		Watchlist:     []string{"AAPL", "NVDA", "SPY"},
		MarketContext: "Futures up overnight, CPI print at 8:30.",
		ProposedPlays: []models.ProposedPlay{
			{Symbol: "AAPL", Side: models.TradeSideBuy, Entry: 210.5, StopLoss: 208, Target: 215},
		},
	}

	b := gen.Generate(models.Briefing10Min, now, 10, plan)

	if b.MarketContext != plan.MarketContext {
		t.Errorf("MarketContext = %q, want plan context", b.MarketContext)
	}
	if len(b.Watchlist) != 3 {
		t.Errorf("Watchlist size = %d, want 3", len(b.Watchlist))
	}
	if len(b.ProposedPlays) != 1 {
		t.Errorf("Plays = %d, want 1", len(b.ProposedPlays))
	}
	if !strings.Contains(b.Summary, "3 symbols") {
		t.Errorf("Summary should mention the watchlist size, got %q", b.Summary)
	}
}

func TestGenerateEmptyContextFallsBack(t *testing.T) {
	gen := NewBriefingGenerator()
	plan := &models.DailyPlan{PlanDate: "2026-03-03", Watchlist: []string{"SPY"}}

	b := gen.Generate(models.Briefing5Min, time.Now(), 5, plan)
	if b.MarketContext != fallbackContext {
		t.Errorf("Empty plan context should fall back, got %q", b.MarketContext)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	gen := NewBriefingGenerator()
	now := time.Date(2026, time.March, 3, 9, 25, 0, 0, time.UTC)
	plan := &models.DailyPlan{
		PlanDate:  "2026-03-03",
		Watchlist: []string{"AAPL", "MSFT"},
	}

	first := gen.Generate(models.Briefing5Min, now, 5, plan)
	second := gen.Generate(models.Briefing5Min, now, 5, plan)

	if first.Summary != second.Summary {
		t.Errorf("Same inputs produced different summaries: %q vs %q", first.Summary, second.Summary)
	}
	if first.MarketContext != second.MarketContext {
		t.Error("Same inputs produced different context")
	}
}

func TestSummariesDistinctPerThreshold(t *testing.T) {
	gen := NewBriefingGenerator()
	now := time.Now()

	types := []models.BriefingType{
		models.Briefing15Min,
		models.Briefing10Min,
		models.Briefing5Min,
		models.BriefingAtOpen,
	}

	seen := make(map[string]models.BriefingType)
	for _, bt := range types {
		b := gen.Generate(bt, now, 0, nil)
		if b.Summary == "" {
			t.Errorf("Empty summary for %q", bt)
			continue
		}
		if prev, dup := seen[b.Summary]; dup {
			t.Errorf("Thresholds %q and %q share a summary", prev, bt)
		}
		seen[b.Summary] = bt
	}
}
