// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"zoe-trader/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trading strategies; the scheduler only reads the approved set
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Daily plans, one per trading day
	CREATE TABLE IF NOT EXISTS daily_plans (
		id TEXT PRIMARY KEY,
		plan_date TEXT NOT NULL UNIQUE,
		watchlist TEXT,
		market_context TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Proposed plays attached to a daily plan
	CREATE TABLE IF NOT EXISTS proposed_plays (
		id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry REAL,
		stop_loss REAL,
		target REAL,
		thesis TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (plan_id) REFERENCES daily_plans(id)
	);

	-- Trade executions reported by the external executor
	CREATE TABLE IF NOT EXISTS trade_records (
		id TEXT PRIMARY KEY,
		trade_id TEXT NOT NULL,
		symbol TEXT,
		side TEXT,
		quantity INTEGER,
		price REAL,
		strategy TEXT,
		is_paper INTEGER DEFAULT 0,
		dry_run INTEGER DEFAULT 0,
		executed_at DATETIME NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Operational audit events
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		detail TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_strategies_status ON strategies(status);
	CREATE INDEX IF NOT EXISTS idx_plays_plan ON proposed_plays(plan_id);
	CREATE INDEX IF NOT EXISTS idx_trades_executed ON trade_records(executed_at);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveStrategy inserts or updates a strategy.
func (s *SQLiteStore) SaveStrategy(ctx context.Context, strategy *models.Strategy) error {
	if strategy.ID == "" {
		strategy.ID = uuid.NewString()
	}
	if strategy.Status == "" {
		strategy.Status = models.StrategyDraft
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO strategies (id, name, status, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			status = excluded.status,
			description = excluded.description,
			updated_at = CURRENT_TIMESTAMP
	`, strategy.ID, strategy.Name, strategy.Status, strategy.Description)
	if err != nil {
		return fmt.Errorf("failed to save strategy: %w", err)
	}
	return nil
}

// GetStrategies retrieves strategies matching the filter.
func (s *SQLiteStore) GetStrategies(ctx context.Context, filter StrategyFilter) ([]models.Strategy, error) {
	query := "SELECT id, name, status, description, created_at, updated_at FROM strategies WHERE 1=1"
	args := []interface{}{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Name != "" {
		query += " AND name = ?"
		args = append(args, filter.Name)
	}

	query += " ORDER BY name"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w", err)
	}
	defer rows.Close()

	var strategies []models.Strategy
	for rows.Next() {
		var st models.Strategy
		if err := rows.Scan(&st.ID, &st.Name, &st.Status, &st.Description, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, st)
	}

	return strategies, rows.Err()
}

// GetApprovedStrategies retrieves the approved strategy set.
func (s *SQLiteStore) GetApprovedStrategies(ctx context.Context) ([]models.Strategy, error) {
	return s.GetStrategies(ctx, StrategyFilter{Status: models.StrategyApproved})
}

// UpdateStrategyStatus changes a strategy's review status.
func (s *SQLiteStore) UpdateStrategyStatus(ctx context.Context, strategyID string, status models.StrategyStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE strategies SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, strategyID)
	if err != nil {
		return fmt.Errorf("failed to update strategy status: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("strategy %s not found", strategyID)
	}
	return nil
}

// SavePlan inserts or updates a daily plan and its proposed plays.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan *models.DailyPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	watchlist, _ := json.Marshal(plan.Watchlist)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_plans (id, plan_date, watchlist, market_context, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(plan_date) DO UPDATE SET
			watchlist = excluded.watchlist,
			market_context = excluded.market_context,
			updated_at = CURRENT_TIMESTAMP
	`, plan.ID, plan.PlanDate, string(watchlist), plan.MarketContext)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	// Resolve the canonical row id in case the plan date already existed
	var planID string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM daily_plans WHERE plan_date = ?`, plan.PlanDate).Scan(&planID); err != nil {
		return fmt.Errorf("failed to resolve plan id: %w", err)
	}
	plan.ID = planID

	if _, err := tx.ExecContext(ctx, `DELETE FROM proposed_plays WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("failed to clear plays: %w", err)
	}
	for i := range plan.ProposedPlays {
		play := &plan.ProposedPlays[i]
		if play.ID == "" {
			play.ID = uuid.NewString()
		}
		play.PlanID = planID
		_, err := tx.ExecContext(ctx, `
			INSERT INTO proposed_plays (id, plan_id, symbol, side, entry, stop_loss, target, thesis)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, play.ID, planID, play.Symbol, play.Side, play.Entry, play.StopLoss, play.Target, play.Thesis)
		if err != nil {
			return fmt.Errorf("failed to save play: %w", err)
		}
	}

	return tx.Commit()
}

// GetPlanForDate retrieves the plan for a date (YYYY-MM-DD), or nil.
func (s *SQLiteStore) GetPlanForDate(ctx context.Context, date string) (*models.DailyPlan, error) {
	var plan models.DailyPlan
	var watchlistJSON sql.NullString
	var marketContext sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, plan_date, watchlist, market_context, created_at, updated_at
		FROM daily_plans WHERE plan_date = ?
	`, date).Scan(&plan.ID, &plan.PlanDate, &watchlistJSON, &marketContext, &plan.CreatedAt, &plan.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	if watchlistJSON.Valid {
		json.Unmarshal([]byte(watchlistJSON.String), &plan.Watchlist)
	}
	plan.MarketContext = marketContext.String

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, plan_id, symbol, side, entry, stop_loss, target, thesis
		FROM proposed_plays WHERE plan_id = ? ORDER BY symbol
	`, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.ProposedPlay
		var thesis sql.NullString
		if err := rows.Scan(&p.ID, &p.PlanID, &p.Symbol, &p.Side, &p.Entry, &p.StopLoss, &p.Target, &thesis); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.Thesis = thesis.String
		plan.ProposedPlays = append(plan.ProposedPlays, p)
	}

	return &plan, rows.Err()
}

// SetPlanContext updates the market context note for a date's plan.
func (s *SQLiteStore) SetPlanContext(ctx context.Context, date, marketContext string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE daily_plans SET market_context = ?, updated_at = CURRENT_TIMESTAMP WHERE plan_date = ?
	`, marketContext, date)
	if err != nil {
		return fmt.Errorf("failed to update plan context: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("no plan for date %s", date)
	}
	return nil
}

// RecordTrade persists a trade execution report.
func (s *SQLiteStore) RecordTrade(ctx context.Context, trade *models.TradeRecord) error {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	isPaper := 0
	if trade.IsPaper {
		isPaper = 1
	}
	dryRun := 0
	if trade.DryRun {
		dryRun = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trade_records (id, trade_id, symbol, side, quantity, price, strategy, is_paper, dry_run, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, trade.ID, trade.TradeID, trade.Symbol, trade.Side, trade.Quantity, trade.Price, trade.Strategy, isPaper, dryRun, trade.ExecutedAt)
	if err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

// GetTrades retrieves trade records matching the filter.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := "SELECT id, trade_id, symbol, side, quantity, price, strategy, is_paper, dry_run, executed_at, recorded_at FROM trade_records WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if !filter.StartDate.IsZero() {
		query += " AND executed_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND executed_at <= ?"
		args = append(args, filter.EndDate)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, filter.Side)
	}
	if filter.IsPaper != nil {
		isPaper := 0
		if *filter.IsPaper {
			isPaper = 1
		}
		query += " AND is_paper = ?"
		args = append(args, isPaper)
	}

	query += " ORDER BY executed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var isPaper, dryRun int
		if err := rows.Scan(&t.ID, &t.TradeID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.Strategy, &isPaper, &dryRun, &t.ExecutedAt, &t.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		t.IsPaper = isPaper == 1
		t.DryRun = dryRun == 1
		trades = append(trades, t)
	}

	return trades, rows.Err()
}

// CountTradesForDate counts trade executions on a date (YYYY-MM-DD).
func (s *SQLiteStore) CountTradesForDate(ctx context.Context, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM trade_records WHERE date(executed_at) = ?
	`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

// SaveAuditEvent persists an operational audit event.
func (s *SQLiteStore) SaveAuditEvent(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, kind, detail, timestamp)
		VALUES (?, ?, ?, ?)
	`, event.ID, event.Kind, event.Detail, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// GetAuditEvents retrieves the most recent audit events.
func (s *SQLiteStore) GetAuditEvents(ctx context.Context, limit int) ([]models.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, detail, timestamp FROM audit_events
		ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Kind, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Detail = detail.String
		events = append(events, e)
	}

	return events, rows.Err()
}
