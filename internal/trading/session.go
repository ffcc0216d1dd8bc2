// Package trading provides the session-aware trading daemon core.
package trading

import (
	"time"

	"zoe-trader/internal/models"
)

// SessionClassifier maps wall-clock time to a market session.
type SessionClassifier interface {
	SessionAt(t time.Time) models.Session
	// MinutesToOpen returns whole minutes until the regular open. Zero or
	// negative means the open has been reached. Only meaningful when
	// SessionAt reports pre-market.
	MinutesToOpen(t time.Time) int
}

// SessionInfo describes the session active at a point in time.
type SessionInfo struct {
	Session     models.Session
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

// MarketClock is the US equities SessionClassifier. All boundaries are
// evaluated in the exchange time zone (America/New_York).
type MarketClock struct {
	location *time.Location
	holidays map[string]bool // date string -> is holiday
}

// NewMarketClock creates a market clock for US equities hours.
func NewMarketClock() *MarketClock {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("ET", -5*60*60)
	}
	return &MarketClock{
		location: loc,
		holidays: make(map[string]bool),
	}
}

// AddHoliday marks a date as a market holiday.
func (m *MarketClock) AddHoliday(date time.Time) {
	key := date.In(m.location).Format("2006-01-02")
	m.holidays[key] = true
}

// IsHoliday checks if a date is a market holiday.
func (m *MarketClock) IsHoliday(date time.Time) bool {
	key := date.In(m.location).Format("2006-01-02")
	return m.holidays[key]
}

// SessionAt returns the market session at a specific time.
func (m *MarketClock) SessionAt(t time.Time) models.Session {
	return m.SessionInfoAt(t).Session
}

// SessionInfoAt returns full session information at a specific time.
func (m *MarketClock) SessionInfoAt(t time.Time) *SessionInfo {
	t = t.In(m.location)

	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return &SessionInfo{
			Session:     models.SessionClosed,
			Description: "Weekend - Market Closed",
		}
	}

	if m.IsHoliday(t) {
		return &SessionInfo{
			Session:     models.SessionClosed,
			Description: "Market Holiday",
		}
	}

	timeMinutes := t.Hour()*60 + t.Minute()

	// Session timings (in minutes from midnight, exchange time)
	preMarketStart := 4 * 60 // 4:00 AM
	marketOpen := 9*60 + 30  // 9:30 AM
	marketClose := 16 * 60   // 4:00 PM
	afterHoursEnd := 20 * 60 // 8:00 PM

	switch {
	case timeMinutes >= preMarketStart && timeMinutes < marketOpen:
		return &SessionInfo{
			Session:     models.SessionPreMarket,
			StartTime:   timeAt(t, 4, 0),
			EndTime:     timeAt(t, 9, 30),
			Description: "Pre-Market Session",
		}
	case timeMinutes >= marketOpen && timeMinutes < marketClose:
		return &SessionInfo{
			Session:     models.SessionMarketOpen,
			StartTime:   timeAt(t, 9, 30),
			EndTime:     timeAt(t, 16, 0),
			Description: "Regular Trading Session",
		}
	case timeMinutes >= marketClose && timeMinutes < afterHoursEnd:
		return &SessionInfo{
			Session:     models.SessionAfterHours,
			StartTime:   timeAt(t, 16, 0),
			EndTime:     timeAt(t, 20, 0),
			Description: "After-Hours Session",
		}
	default:
		return &SessionInfo{
			Session:     models.SessionClosed,
			Description: "Market Closed",
		}
	}
}

// MinutesToOpen returns whole minutes until the 9:30 open, rounded up so a
// partial minute still counts as a full one. Zero or negative at/after open.
func (m *MarketClock) MinutesToOpen(t time.Time) int {
	t = t.In(m.location)
	open := timeAt(t, 9, 30)
	d := open.Sub(t)
	if d <= 0 {
		return int(d / time.Minute)
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// NextTradingDay returns the next non-weekend, non-holiday day.
func (m *MarketClock) NextTradingDay(t time.Time) time.Time {
	next := t.In(m.location).AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday || m.IsHoliday(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// timeAt creates a time on the same day at specified hour and minute.
func timeAt(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}
