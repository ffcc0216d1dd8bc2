package trading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zoe-trader/internal/models"
)

// fakeClock is a settable SessionClassifier for driving ticks.
type fakeClock struct {
	mu      sync.Mutex
	session models.Session
	minutes int
}

func newFakeClock() *fakeClock {
	return &fakeClock{session: models.SessionClosed}
}

func (f *fakeClock) set(session models.Session, minutes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = session
	f.minutes = minutes
}

func (f *fakeClock) SessionAt(time.Time) models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *fakeClock) MinutesToOpen(time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minutes
}

// fakeStore backs the scheduler's store interfaces in memory.
type fakeStore struct {
	mu          sync.Mutex
	strategies  []models.Strategy
	strategyErr error
	plan        *models.DailyPlan
	planErr     error
	events      []models.AuditEvent
}

func (f *fakeStore) GetApprovedStrategies(ctx context.Context) ([]models.Strategy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.strategyErr != nil {
		return nil, f.strategyErr
	}
	return f.strategies, nil
}

func (f *fakeStore) GetPlanForDate(ctx context.Context, date string) (*models.DailyPlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.plan, nil
}

func (f *fakeStore) SaveAuditEvent(ctx context.Context, event *models.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeStore) auditCount(kind models.AuditKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, e := range f.events {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// captureNotifier records briefings in delivery order.
type captureNotifier struct {
	mu        sync.Mutex
	briefings []models.Briefing
	sendErr   error
}

func (c *captureNotifier) SendBriefing(ctx context.Context, b *models.Briefing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.briefings = append(c.briefings, *b)
	return nil
}

func (c *captureNotifier) types() []models.BriefingType {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]models.BriefingType, len(c.briefings))
	for i, b := range c.briefings {
		types[i] = b.Type
	}
	return types
}

func newTestScheduler(clock *fakeClock, store *fakeStore, notifier *captureNotifier) *Scheduler {
	cfg := SchedulerConfig{
		TickInterval:    time.Hour, // ticks are driven manually
		MaxTradesPerDay: 3,
	}
	return NewScheduler(cfg, clock, store, store, store, notifier, zerolog.Nop())
}

// startScheduler starts the scheduler and waits out the immediate first tick
// so manual ticks do not race it.
func startScheduler(t *testing.T, ctx context.Context, s *Scheduler) {
	t.Helper()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Failed to start scheduler: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
}

func TestStartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}}}
	s := newTestScheduler(clock, store, &captureNotifier{})

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Second start returned error: %v", err)
	}
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Third start returned error: %v", err)
	}

	if got := store.auditCount(models.AuditSchedulerStart); got != 1 {
		t.Errorf("Start audit events = %d, want 1", got)
	}
	if !s.Status().Running {
		t.Error("Scheduler should be running")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	s := newTestScheduler(newFakeClock(), store, &captureNotifier{})

	startScheduler(t, ctx, s)
	s.Stop(ctx)
	s.Stop(ctx)

	if got := store.auditCount(models.AuditSchedulerStop); got != 1 {
		t.Errorf("Stop audit events = %d, want 1", got)
	}
	if s.Status().Running {
		t.Error("Scheduler should be stopped")
	}
}

func TestTickIgnoredBeforeStart(t *testing.T) {
	clock := newFakeClock()
	clock.set(models.SessionPreMarket, 15)
	notifier := &captureNotifier{}
	s := newTestScheduler(clock, &fakeStore{}, notifier)

	s.Tick(context.Background(), time.Now())

	if len(notifier.types()) != 0 {
		t.Errorf("Tick before start emitted %d briefings, want 0", len(notifier.types()))
	}
}

func TestBriefingCountdownSequence(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := &captureNotifier{}
	s := newTestScheduler(clock, &fakeStore{}, notifier)

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	// Ticks sweep the pre-market countdown: 20, 14, 9, 4, 0 minutes out
	for _, minutes := range []int{20, 14, 9, 4, 0} {
		clock.set(models.SessionPreMarket, minutes)
		s.Tick(ctx, time.Now())
	}

	want := []models.BriefingType{
		models.Briefing15Min,
		models.Briefing10Min,
		models.Briefing5Min,
		models.BriefingAtOpen,
	}
	got := notifier.types()
	if len(got) != len(want) {
		t.Fatalf("Emitted %d briefings %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Briefing %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBriefingNotRepeatedWithinBucket(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := &captureNotifier{}
	s := newTestScheduler(clock, &fakeStore{}, notifier)

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	// 9 and 7 minutes out both land in the 10min bucket
	clock.set(models.SessionPreMarket, 9)
	s.Tick(ctx, time.Now())
	clock.set(models.SessionPreMarket, 7)
	s.Tick(ctx, time.Now())

	got := notifier.types()
	if len(got) != 1 || got[0] != models.Briefing10Min {
		t.Errorf("Briefings = %v, want exactly one 10min", got)
	}
	if s.LastBriefing() != models.Briefing10Min {
		t.Errorf("LastBriefing = %q, want 10min", s.LastBriefing())
	}
}

func TestBriefingMarkedEmittedEvenWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	notifier := &captureNotifier{sendErr: errors.New("webhook down")}
	s := newTestScheduler(clock, &fakeStore{}, notifier)

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	clock.set(models.SessionPreMarket, 5)
	s.Tick(ctx, time.Now())

	// Delivery failed but the threshold is consumed; no retry storm
	if s.LastBriefing() != models.Briefing5Min {
		t.Errorf("LastBriefing = %q, want 5min despite delivery failure", s.LastBriefing())
	}
	s.Tick(ctx, time.Now())
	if s.LastBriefing() != models.Briefing5Min {
		t.Error("Failed delivery should not re-arm the threshold")
	}
}

func TestMarketOpenScanRecordsTime(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}}}
	s := newTestScheduler(clock, store, &captureNotifier{})

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	clock.set(models.SessionMarketOpen, 0)
	tickTime := time.Date(2026, time.March, 3, 9, 45, 0, 0, time.UTC)
	s.Tick(ctx, tickTime)

	if !s.LastScanTime().Equal(tickTime) {
		t.Errorf("LastScanTime = %v, want %v", s.LastScanTime(), tickTime)
	}
}

func TestTradeCeilingBlocksScan(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}}}
	s := newTestScheduler(clock, store, &captureNotifier{})

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	s.RecordTradeExecution("T-1")
	s.RecordTradeExecution("T-2")
	s.RecordTradeExecution("T-3")

	clock.set(models.SessionMarketOpen, 0)
	s.Tick(ctx, time.Now())

	if !s.LastScanTime().IsZero() {
		t.Error("Scan should be blocked at the daily trade ceiling")
	}
	if s.TradesToday() != 3 {
		t.Errorf("TradesToday = %d, want 3", s.TradesToday())
	}

	// ResetDaily re-arms the guard
	s.ResetDaily(ctx)
	s.Tick(ctx, time.Now())
	if s.LastScanTime().IsZero() {
		t.Error("Scan should pass after the daily reset")
	}
}

func TestScanBlockedWithoutApprovedStrategies(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := newTestScheduler(clock, &fakeStore{}, &captureNotifier{})

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	clock.set(models.SessionMarketOpen, 0)
	s.Tick(ctx, time.Now())

	if !s.LastScanTime().IsZero() {
		t.Error("Scan should be blocked with an empty strategy set")
	}
}

func TestRecordTradeExecutionConcurrent(t *testing.T) {
	s := newTestScheduler(newFakeClock(), &fakeStore{}, &captureNotifier{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordTradeExecution("T-X")
		}()
	}
	wg.Wait()

	if s.TradesToday() != 50 {
		t.Errorf("TradesToday = %d, want 50", s.TradesToday())
	}
}

func TestResetDailyClearsExactlyDailyState(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{
		strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}},
		plan:       &models.DailyPlan{PlanDate: "2026-03-03", Watchlist: []string{"SPY"}},
	}
	s := newTestScheduler(clock, store, &captureNotifier{})

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	s.RecordTradeExecution("T-1")
	s.SetCandidates([]string{"AAPL", "NVDA"})
	clock.set(models.SessionPreMarket, 5)
	s.Tick(ctx, time.Now())

	s.ResetDaily(ctx)

	status := s.Status()
	if status.TradesToday != 0 {
		t.Errorf("TradesToday = %d after reset, want 0", status.TradesToday)
	}
	if status.LastBriefing != models.BriefingNone {
		t.Errorf("LastBriefing = %q after reset, want none", status.LastBriefing)
	}
	if status.HasPlan {
		t.Error("Daily plan should be cleared by reset")
	}
	if len(s.Candidates()) != 0 {
		t.Errorf("Candidates = %v after reset, want empty", s.Candidates())
	}
	// Running state and loaded strategies survive the reset
	if !status.Running {
		t.Error("Reset must not stop the scheduler")
	}
	if status.Strategies != 1 {
		t.Errorf("Strategies = %d after reset, want 1", status.Strategies)
	}
	if got := store.auditCount(models.AuditDailyReset); got != 1 {
		t.Errorf("Reset audit events = %d, want 1", got)
	}
}

func TestClosedAndAfterHoursAreNoOps(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}}}
	notifier := &captureNotifier{}
	s := newTestScheduler(clock, store, notifier)

	startScheduler(t, ctx, s)
	defer s.Stop(ctx)

	clock.set(models.SessionClosed, 0)
	s.Tick(ctx, time.Now())
	clock.set(models.SessionAfterHours, 0)
	s.Tick(ctx, time.Now())

	if len(notifier.types()) != 0 {
		t.Errorf("Off-hours ticks emitted %d briefings, want 0", len(notifier.types()))
	}
	if !s.LastScanTime().IsZero() {
		t.Error("Off-hours ticks must not record a scan time")
	}
}

func TestStartSurvivesStrategyLoadFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{strategyErr: errors.New("store unavailable")}
	s := newTestScheduler(clock, store, &captureNotifier{})

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start should survive a strategy load failure, got: %v", err)
	}
	defer s.Stop(ctx)
	time.Sleep(50 * time.Millisecond)

	status := s.Status()
	if !status.Running {
		t.Fatal("Scheduler should be running despite the load failure")
	}
	if status.Strategies != 0 {
		t.Errorf("Strategies = %d, want 0 after failed load", status.Strategies)
	}

	// Empty strategy set keeps the guard closed
	clock.set(models.SessionMarketOpen, 0)
	s.Tick(ctx, time.Now())
	if !s.LastScanTime().IsZero() {
		t.Error("Scan should stay blocked while the strategy set is empty")
	}
}

func TestStartSurvivesPlanLoadFailure(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	store := &fakeStore{
		strategies: []models.Strategy{{Name: "orb", Status: models.StrategyApproved}},
		planErr:    errors.New("store unavailable"),
	}
	notifier := &captureNotifier{}
	s := newTestScheduler(clock, store, notifier)

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start should survive a plan load failure, got: %v", err)
	}
	defer s.Stop(ctx)
	time.Sleep(50 * time.Millisecond)

	if s.Status().HasPlan {
		t.Error("Failed plan load should leave the plan empty")
	}

	// Briefings still fire, with fallback content
	clock.set(models.SessionPreMarket, 15)
	s.Tick(ctx, time.Now())
	briefings := notifier.types()
	if len(briefings) != 1 {
		t.Fatalf("Briefings = %v, want one 15min", briefings)
	}
}

func TestDefaultsAppliedToZeroConfig(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, newFakeClock(), nil, nil, nil, nil, zerolog.Nop())

	if s.cfg.TickInterval != 60*time.Second {
		t.Errorf("TickInterval = %v, want 60s", s.cfg.TickInterval)
	}
	if s.cfg.MaxTradesPerDay != 3 {
		t.Errorf("MaxTradesPerDay = %d, want 3", s.cfg.MaxTradesPerDay)
	}
}
