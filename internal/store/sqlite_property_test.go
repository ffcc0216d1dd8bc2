package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"zoe-trader/internal/models"
)

// Property: the daily trade count equals the number of executions recorded
// for that date, regardless of symbols, sides or order of insertion. The
// count is what feeds the scan guard, so it must be exact.
func TestProperty_DailyTradeCountExact(t *testing.T) {
	dbPath := "test_trade_count_property.db"
	defer func() {
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "NVDA", "SPY", "QQQ", "TSLA"}
	seq := 0

	properties.Property("count matches executions recorded per date", prop.ForAll(
		func(countA, countB int, symbolIdx int) bool {
			ctx := context.Background()
			seq++

			// Two distinct dates per run so counts cannot bleed across days
			dayA := time.Date(2030, time.January, 1, 10, 0, 0, 0, time.UTC).AddDate(0, 0, seq*2)
			dayB := dayA.AddDate(0, 0, 1)

			insert := func(day time.Time, n int) bool {
				for i := 0; i < n; i++ {
					trade := &models.TradeRecord{
						TradeID:    fmt.Sprintf("T-%d-%s-%d", seq, day.Format("0102"), i),
						Symbol:     symbols[(symbolIdx+i)%len(symbols)],
						Side:       models.TradeSideBuy,
						Quantity:   1,
						Price:      100,
						IsPaper:    true,
						ExecutedAt: day.Add(time.Duration(i) * time.Minute),
					}
					if err := store.RecordTrade(ctx, trade); err != nil {
						return false
					}
				}
				return true
			}

			if !insert(dayA, countA) || !insert(dayB, countB) {
				return false
			}

			gotA, err := store.CountTradesForDate(ctx, dayA.Format("2006-01-02"))
			if err != nil {
				return false
			}
			gotB, err := store.CountTradesForDate(ctx, dayB.Format("2006-01-02"))
			if err != nil {
				return false
			}
			return gotA == countA && gotB == countB
		},
		gen.IntRange(0, 8),
		gen.IntRange(0, 8),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
