package models

import "time"

// TradeSide represents the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeRecord represents a trade execution reported back by the external
// executor. The scheduler only counts these; it never creates them itself.
type TradeRecord struct {
	ID         string
	TradeID    string
	Symbol     string
	Side       TradeSide
	Quantity   int
	Price      float64
	Strategy   string
	IsPaper    bool
	DryRun     bool
	ExecutedAt time.Time
	RecordedAt time.Time
}

// Strategy represents a trading strategy record. The scheduler treats the
// approved set as opaque and only checks non-emptiness.
type Strategy struct {
	ID          string
	Name        string
	Status      StrategyStatus
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StrategyStatus represents the review status of a strategy.
type StrategyStatus string

const (
	StrategyDraft    StrategyStatus = "DRAFT"
	StrategyApproved StrategyStatus = "APPROVED"
	StrategyRetired  StrategyStatus = "RETIRED"
)

// DailyPlan represents today's trading plan: watchlist, proposed plays and
// a free-form market context note. At most one plan exists per trading day.
type DailyPlan struct {
	ID            string
	PlanDate      string // YYYY-MM-DD
	Watchlist     []string
	ProposedPlays []ProposedPlay
	MarketContext string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProposedPlay represents a candidate trade attached to a daily plan.
type ProposedPlay struct {
	ID       string
	PlanID   string
	Symbol   string
	Side     TradeSide
	Entry    float64
	StopLoss float64
	Target   float64
	Thesis   string
}

// AuditEvent represents an operational audit record (daemon start, daily
// reset) persisted for the dashboard's health view.
type AuditEvent struct {
	ID        string
	Kind      AuditKind
	Detail    string
	Timestamp time.Time
}

// AuditKind classifies audit events.
type AuditKind string

const (
	AuditSchedulerStart AuditKind = "SCHEDULER_START"
	AuditSchedulerStop  AuditKind = "SCHEDULER_STOP"
	AuditDailyReset     AuditKind = "DAILY_RESET"
)
