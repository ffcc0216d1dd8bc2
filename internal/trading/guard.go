package trading

import (
	"fmt"
)

// ScanGuard validates whether a market-open tick may proceed to a scan.
// It is the only gate between the timer and the external scan pipeline:
// a tick that fails any check has no externally visible effect.
type ScanGuard struct {
	maxTradesPerDay int
}

// GuardState is the runtime input to a guard check.
type GuardState struct {
	TradesToday        int
	ApprovedStrategies int
}

// GuardResult contains the outcome of a guard check.
type GuardResult struct {
	ShouldScan   bool
	BlockReason  string
	ChecksPassed []string
	ChecksFailed []string
}

// NewScanGuard creates a scan guard with the given daily trade ceiling.
func NewScanGuard(maxTradesPerDay int) *ScanGuard {
	return &ScanGuard{maxTradesPerDay: maxTradesPerDay}
}

// Check determines if a market-open tick is eligible to scan.
func (g *ScanGuard) Check(state GuardState) GuardResult {
	result := GuardResult{
		ShouldScan:   true,
		ChecksPassed: []string{},
		ChecksFailed: []string{},
	}

	// Check 1: daily trade ceiling
	if g.maxTradesPerDay > 0 && state.TradesToday >= g.maxTradesPerDay {
		result.ShouldScan = false
		result.BlockReason = fmt.Sprintf("daily trade limit reached: %d of %d", state.TradesToday, g.maxTradesPerDay)
		result.ChecksFailed = append(result.ChecksFailed, "daily_trade_limit")
		return result
	}
	result.ChecksPassed = append(result.ChecksPassed, "daily_trade_limit")

	// Check 2: approved strategies must exist
	if state.ApprovedStrategies == 0 {
		result.ShouldScan = false
		result.BlockReason = "no approved strategies loaded"
		result.ChecksFailed = append(result.ChecksFailed, "approved_strategies")
		return result
	}
	result.ChecksPassed = append(result.ChecksPassed, "approved_strategies")

	return result
}

// MaxTrades returns the configured daily ceiling.
func (g *ScanGuard) MaxTrades() int {
	return g.maxTradesPerDay
}
