package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"liveRiskSizer/internal/domain"
	"liveRiskSizer/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/oklog/ulid/v2"
)

const defaultJournalPath = "./data/risk_journal.db"

// Journal implements the ports.AssessmentJournal interface using SQLite.
// Entries are keyed by ULID so rows sort by creation time.
type Journal struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite journal.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewJournal creates a new SQLite journal instance, initializing the schema
// if the database is fresh.
func NewJournal(cfg Config) (*Journal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite journal")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = defaultJournalPath
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	// SQLite serializes writers internally; the Go driver behaves best with a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, logger: cfg.Logger}
	if err := j.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize journal schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite journal initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "SQLite journal ready", map[string]interface{}{"path": dbPath})
	return j, nil
}

func (j *Journal) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		recorded_at TIMESTAMP NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		live_price REAL NOT NULL,
		leverage REAL NOT NULL,
		equity REAL NOT NULL,
		stop_loss REAL DEFAULT NULL,
		risk_fraction REAL NOT NULL,
		liquidation_price REAL NOT NULL,
		margin_per_unit REAL NOT NULL,
		max_units_by_margin REAL NOT NULL,
		per_unit_risk REAL NOT NULL,
		units_by_risk REAL NOT NULL,
		recommended_units REAL NOT NULL,
		recommended_margin_capital REAL NOT NULL,
		misplaced_stop INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_symbol_recorded_at ON assessments (symbol, recorded_at);
	`
	if _, err := j.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		j.logger.Info(context.Background(), "Closing SQLite journal")
		return j.db.Close()
	}
	return nil
}

// Append persists one assessment and returns its assigned ULID.
func (j *Journal) Append(ctx context.Context, a *domain.RiskAssessment) (string, error) {
	const query = `
	INSERT INTO assessments (
		id, recorded_at, symbol, side, entry_price, live_price, leverage, equity,
		stop_loss, risk_fraction, liquidation_price, margin_per_unit,
		max_units_by_margin, per_unit_risk, units_by_risk, recommended_units,
		recommended_margin_capital, misplaced_stop
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id := ulid.Make().String()

	var stop sql.NullFloat64
	if a.StopLoss != nil {
		stop = sql.NullFloat64{Float64: *a.StopLoss, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, query,
		id, time.Now().UTC(), a.Symbol, string(a.Side), a.EntryPrice, a.LivePrice,
		a.Leverage, a.Equity, stop, a.RiskFraction, a.LiquidationPrice,
		a.MarginPerUnit, a.MaxUnitsByMargin, a.PerUnitRisk, a.UnitsByRisk,
		a.RecommendedUnits, a.RecommendedMarginCapital, boolToInt(a.MisplacedStop))
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert assessment for %s: %w", ports.ErrAppendFailed, a.Symbol, err)
	}

	j.logger.Debug(ctx, "Assessment journaled", map[string]interface{}{"id": id, "symbol": a.Symbol})
	return id, nil
}

// Recent retrieves the most recent entries, newest first. An empty symbol
// matches all symbols.
func (j *Journal) Recent(ctx context.Context, symbol string, limit int) ([]*ports.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, recorded_at, symbol, side, entry_price, live_price, leverage, equity,
	       stop_loss, risk_fraction, liquidation_price, margin_per_unit,
	       max_units_by_margin, per_unit_risk, units_by_risk, recommended_units,
	       recommended_margin_capital, misplaced_stop
	FROM assessments`
	args := []interface{}{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY recorded_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []*ports.JournalEntry
	for rows.Next() {
		e := &ports.JournalEntry{}
		var side string
		var stop sql.NullFloat64
		var misplaced int
		err := rows.Scan(
			&e.ID, &e.RecordedAt, &e.Assessment.Symbol, &side,
			&e.Assessment.EntryPrice, &e.Assessment.LivePrice,
			&e.Assessment.Leverage, &e.Assessment.Equity,
			&stop, &e.Assessment.RiskFraction,
			&e.Assessment.LiquidationPrice, &e.Assessment.MarginPerUnit,
			&e.Assessment.MaxUnitsByMargin, &e.Assessment.PerUnitRisk,
			&e.Assessment.UnitsByRisk, &e.Assessment.RecommendedUnits,
			&e.Assessment.RecommendedMarginCapital, &misplaced)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan assessment row: %w", ports.ErrQueryFailed, err)
		}
		e.Assessment.Side = domain.Side(side)
		if stop.Valid {
			v := stop.Float64
			e.Assessment.StopLoss = &v
		}
		e.Assessment.MisplacedStop = misplaced != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrQueryFailed, err)
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
