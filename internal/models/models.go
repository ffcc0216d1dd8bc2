// Package models provides domain models for the trading daemon.
package models

import (
	"time"
)

// Session represents the market-clock phase that gates scheduler behavior.
type Session string

const (
	SessionClosed     Session = "CLOSED"
	SessionPreMarket  Session = "PRE_MARKET"
	SessionMarketOpen Session = "MARKET_OPEN"
	SessionAfterHours Session = "AFTER_HOURS"
)

// String returns a human-readable description of the session.
func (s Session) String() string {
	switch s {
	case SessionPreMarket:
		return "Pre-Market (4:00-9:30 ET)"
	case SessionMarketOpen:
		return "Market Open (9:30-16:00 ET)"
	case SessionAfterHours:
		return "After Hours (16:00-20:00 ET)"
	case SessionClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// BriefingType represents a pre-market briefing threshold, ordered by
// proximity to the open. At most one of each fires per trading day.
type BriefingType string

const (
	BriefingNone   BriefingType = ""
	Briefing15Min  BriefingType = "15min"
	Briefing10Min  BriefingType = "10min"
	Briefing5Min   BriefingType = "5min"
	BriefingAtOpen BriefingType = "at_open"
)

// Urgency returns the position of the briefing in the countdown order.
// Higher means closer to the open. BriefingNone is 0.
func (b BriefingType) Urgency() int {
	switch b {
	case Briefing15Min:
		return 1
	case Briefing10Min:
		return 2
	case Briefing5Min:
		return 3
	case BriefingAtOpen:
		return 4
	default:
		return 0
	}
}

// Briefing is an immutable pre-market summary handed to the notifier.
type Briefing struct {
	Type          BriefingType
	Timestamp     time.Time
	MinutesToOpen int
	Summary       string
	Watchlist     []string
	ProposedPlays []ProposedPlay
	MarketContext string
}

// SchedulerStatus is a point-in-time snapshot of the daemon runtime state.
type SchedulerStatus struct {
	Running      bool
	Session      Session
	TradesToday  int
	MaxTrades    int
	LastBriefing BriefingType
	LastScanTime time.Time
	HasPlan      bool
	Strategies   int
	DryRun       bool
}
