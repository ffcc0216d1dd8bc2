package trading

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"zoe-trader/internal/models"
	"zoe-trader/pkg/utils"
)

// StrategySource provides the current set of approved strategies.
type StrategySource interface {
	GetApprovedStrategies(ctx context.Context) ([]models.Strategy, error)
}

// PlanSource provides the daily trading plan.
type PlanSource interface {
	GetPlanForDate(ctx context.Context, date string) (*models.DailyPlan, error)
}

// AuditSink receives operational audit events.
type AuditSink interface {
	SaveAuditEvent(ctx context.Context, event *models.AuditEvent) error
}

// BriefingNotifier receives generated briefings for downstream delivery.
type BriefingNotifier interface {
	SendBriefing(ctx context.Context, briefing *models.Briefing) error
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	TickInterval    time.Duration
	MaxTradesPerDay int
	Watchlist       []string
	DryRun          bool
}

// DefaultSchedulerConfig returns the default scheduler configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickInterval:    60 * time.Second,
		MaxTradesPerDay: 3,
	}
}

// Scheduler runs the session-aware tick loop: it classifies the current
// market session on every tick, emits at most one pre-market briefing per
// threshold crossing, and gates market-open scans behind the daily trade
// ceiling and the presence of approved strategies.
//
// One scheduler instance owns one timer. Tick state has a single logical
// writer (the tick handler); the trade counter is atomic because trade
// executions are reported from outside the tick loop.
type Scheduler struct {
	cfg        SchedulerConfig
	clock      SessionClassifier
	strategies StrategySource
	plans      PlanSource
	audit      AuditSink
	notifier   BriefingNotifier
	generator  *BriefingGenerator
	guard      *ScanGuard
	logger     zerolog.Logger

	tradesToday atomic.Int64

	mu           sync.Mutex
	running      bool
	session      models.Session
	lastBriefing models.BriefingType
	lastScanTime time.Time
	dailyPlan    *models.DailyPlan
	approved     []models.Strategy
	candidates   []string
	stopCh       chan struct{}
}

// NewScheduler creates a scheduler. The notifier and audit sink may be nil;
// emissions are then dropped.
func NewScheduler(
	cfg SchedulerConfig,
	clock SessionClassifier,
	strategies StrategySource,
	plans PlanSource,
	audit AuditSink,
	notifier BriefingNotifier,
	logger zerolog.Logger,
) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultSchedulerConfig().TickInterval
	}
	if cfg.MaxTradesPerDay <= 0 {
		cfg.MaxTradesPerDay = DefaultSchedulerConfig().MaxTradesPerDay
	}
	return &Scheduler{
		cfg:        cfg,
		clock:      clock,
		strategies: strategies,
		plans:      plans,
		audit:      audit,
		notifier:   notifier,
		generator:  NewBriefingGenerator(),
		guard:      NewScanGuard(cfg.MaxTradesPerDay),
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins the tick loop. Calling Start on a running scheduler is a
// logged no-op. Strategy and plan loads are best-effort: a failure leaves
// the respective state empty and the scheduler running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info().Msg("Scheduler already running, start ignored")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.loadStrategies(ctx)
	s.loadDailyPlan(ctx)

	s.emitAudit(ctx, models.AuditSchedulerStart, "scheduler started")
	s.logger.Info().
		Dur("tick_interval", s.cfg.TickInterval).
		Int("max_trades_per_day", s.cfg.MaxTradesPerDay).
		Bool("dry_run", s.cfg.DryRun).
		Msg("Scheduler started")

	go s.run(ctx, stopCh)
	return nil
}

// Stop halts the tick loop. Calling Stop on a stopped scheduler is a
// logged no-op.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Info().Msg("Scheduler not running, stop ignored")
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.emitAudit(ctx, models.AuditSchedulerStop, "scheduler stopped")
	s.logger.Info().Msg("Scheduler stopped")
}

// run owns the repeating timer. The first tick fires immediately so a
// missed first interval does not delay first action. Each tick runs in its
// own goroutine: a slow store or notifier call must not block the timer,
// and a tick failure must never cancel it.
func (s *Scheduler) run(ctx context.Context, stopCh chan struct{}) {
	go s.safeTick(ctx, time.Now())

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			go s.safeTick(ctx, now)
		}
	}
}

// safeTick recovers tick panics at the tick boundary so the timer survives.
func (s *Scheduler) safeTick(ctx context.Context, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("Tick handler panicked")
		}
	}()
	s.Tick(ctx, now)
}

// Tick classifies the session at now and dispatches to the session handler.
// No-op when the scheduler is not running. Closed and after-hours sessions
// have no in-process responsibilities.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	session := s.clock.SessionAt(now)
	s.session = session
	s.mu.Unlock()

	switch session {
	case models.SessionPreMarket:
		s.handlePreMarket(ctx, now)
	case models.SessionMarketOpen:
		s.handleMarketOpen(now)
	case models.SessionClosed, models.SessionAfterHours:
		// Off-hours work belongs to external batch jobs.
	}
}

// handlePreMarket emits at most one briefing per threshold crossing.
// Re-entering the same bucket on a later tick is suppressed.
func (s *Scheduler) handlePreMarket(ctx context.Context, now time.Time) {
	minutesLeft := s.clock.MinutesToOpen(now)
	btype := BriefingTypeFor(minutesLeft)
	if btype == models.BriefingNone {
		return
	}

	s.mu.Lock()
	if btype == s.lastBriefing {
		s.mu.Unlock()
		return
	}
	s.lastBriefing = btype
	plan := s.dailyPlan
	s.mu.Unlock()

	briefing := s.generator.Generate(btype, now, minutesLeft, plan)
	s.logger.Info().
		Str("briefing", string(btype)).
		Int("minutes_to_open", minutesLeft).
		Int("watchlist", len(briefing.Watchlist)).
		Int("plays", len(briefing.ProposedPlays)).
		Msg("Pre-market briefing")

	if s.notifier != nil {
		if err := s.notifier.SendBriefing(ctx, briefing); err != nil {
			s.logger.Warn().Err(err).Str("briefing", string(btype)).Msg("Briefing delivery failed")
		}
	}
}

// handleMarketOpen applies the scan guard and records the tick timestamp
// when it passes. Scanning, shortlisting and order placement are delegated
// to the external pipeline.
func (s *Scheduler) handleMarketOpen(now time.Time) {
	s.mu.Lock()
	approved := len(s.approved)
	s.mu.Unlock()

	result := s.guard.Check(GuardState{
		TradesToday:        int(s.tradesToday.Load()),
		ApprovedStrategies: approved,
	})
	if !result.ShouldScan {
		s.logger.Debug().Str("reason", result.BlockReason).Msg("Scan blocked")
		return
	}

	s.mu.Lock()
	s.lastScanTime = now
	s.mu.Unlock()
	s.logger.Debug().Time("scan_time", now).Msg("Scan window eligible")
}

// RecordTradeExecution counts a completed trade reported by the external
// executor. Safe to call concurrently with ticks.
func (s *Scheduler) RecordTradeExecution(tradeID string) {
	count := s.tradesToday.Add(1)
	s.logger.Info().
		Str("trade_id", tradeID).
		Int64("trades_today", count).
		Int("max_trades_per_day", s.cfg.MaxTradesPerDay).
		Msg("Trade execution recorded")
}

// ResetDaily clears the per-day state: trade counter, last briefing, daily
// plan and pending candidates. Running state and session are untouched.
// Invoked once per new trading day by an external caller.
func (s *Scheduler) ResetDaily(ctx context.Context) {
	s.tradesToday.Store(0)
	s.mu.Lock()
	s.lastBriefing = models.BriefingNone
	s.dailyPlan = nil
	s.candidates = nil
	s.mu.Unlock()

	s.emitAudit(ctx, models.AuditDailyReset, "daily state reset")
	s.logger.Info().Msg("Daily state reset")
}

// SetCandidates replaces the pending candidate shortlist reported by the
// external scan pipeline.
func (s *Scheduler) SetCandidates(symbols []string) {
	s.mu.Lock()
	s.candidates = symbols
	s.mu.Unlock()
}

// Candidates returns the pending candidate shortlist.
func (s *Scheduler) Candidates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates
}

// Status returns a snapshot of the runtime state.
func (s *Scheduler) Status() models.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SchedulerStatus{
		Running:      s.running,
		Session:      s.session,
		TradesToday:  int(s.tradesToday.Load()),
		MaxTrades:    s.cfg.MaxTradesPerDay,
		LastBriefing: s.lastBriefing,
		LastScanTime: s.lastScanTime,
		HasPlan:      s.dailyPlan != nil,
		Strategies:   len(s.approved),
		DryRun:       s.cfg.DryRun,
	}
}

// LastScanTime returns the timestamp of the most recent guard-passing tick.
func (s *Scheduler) LastScanTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScanTime
}

// LastBriefing returns the most recently emitted briefing type.
func (s *Scheduler) LastBriefing() models.BriefingType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBriefing
}

// TradesToday returns the current trade count.
func (s *Scheduler) TradesToday() int {
	return int(s.tradesToday.Load())
}

// SetDailyPlan replaces the daily plan snapshot.
func (s *Scheduler) SetDailyPlan(plan *models.DailyPlan) {
	s.mu.Lock()
	s.dailyPlan = plan
	s.mu.Unlock()
}

// loadStrategies loads the approved strategy set. Best-effort: a failure
// leaves the set empty, which blocks the scan guard.
func (s *Scheduler) loadStrategies(ctx context.Context) {
	if s.strategies == nil {
		return
	}
	var approved []models.Strategy
	err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		var loadErr error
		approved, loadErr = s.strategies.GetApprovedStrategies(ctx)
		return loadErr
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Strategy load failed, running with empty strategy set")
		return
	}
	s.mu.Lock()
	s.approved = approved
	s.mu.Unlock()
	s.logger.Info().Int("approved", len(approved)).Msg("Strategies loaded")
}

// loadDailyPlan loads today's plan. Best-effort: a failure leaves the plan
// empty and briefings fall back to defaults.
func (s *Scheduler) loadDailyPlan(ctx context.Context) {
	if s.plans == nil {
		return
	}
	today := time.Now().Format("2006-01-02")
	var plan *models.DailyPlan
	err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		var loadErr error
		plan, loadErr = s.plans.GetPlanForDate(ctx, today)
		return loadErr
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Daily plan load failed, running without a plan")
		return
	}
	s.mu.Lock()
	s.dailyPlan = plan
	s.mu.Unlock()
	if plan != nil {
		s.logger.Info().
			Str("plan_date", plan.PlanDate).
			Int("watchlist", len(plan.Watchlist)).
			Int("plays", len(plan.ProposedPlays)).
			Msg("Daily plan loaded")
	}
}

// emitAudit persists an audit event. Failures are logged and dropped.
func (s *Scheduler) emitAudit(ctx context.Context, kind models.AuditKind, detail string) {
	if s.audit == nil {
		return
	}
	event := &models.AuditEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Detail:    detail,
		Timestamp: time.Now(),
	}
	if err := s.audit.SaveAuditEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("Audit event write failed")
	}
}
