// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"zoe-trader/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Strategies
	SaveStrategy(ctx context.Context, strategy *models.Strategy) error
	GetStrategies(ctx context.Context, filter StrategyFilter) ([]models.Strategy, error)
	GetApprovedStrategies(ctx context.Context) ([]models.Strategy, error)
	UpdateStrategyStatus(ctx context.Context, strategyID string, status models.StrategyStatus) error

	// Daily plans
	SavePlan(ctx context.Context, plan *models.DailyPlan) error
	GetPlanForDate(ctx context.Context, date string) (*models.DailyPlan, error)
	SetPlanContext(ctx context.Context, date, marketContext string) error

	// Trade executions
	RecordTrade(ctx context.Context, trade *models.TradeRecord) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)
	CountTradesForDate(ctx context.Context, date string) (int, error)

	// Audit
	SaveAuditEvent(ctx context.Context, event *models.AuditEvent) error
	GetAuditEvents(ctx context.Context, limit int) ([]models.AuditEvent, error)

	// Lifecycle
	Close() error
}

// StrategyFilter represents filters for querying strategies.
type StrategyFilter struct {
	Status models.StrategyStatus
	Name   string
	Limit  int
}

// TradeFilter represents filters for querying trade records.
type TradeFilter struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
	Side      models.TradeSide
	IsPaper   *bool
	Limit     int
}
