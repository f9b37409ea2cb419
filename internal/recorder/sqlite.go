package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/model"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
// Decimal ratios are stored as TEXT to keep them exact; NULL means not available.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the HTTP server can read history while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.S().Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fundamentals_snapshots (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT NOT NULL,
			timestamp          INTEGER NOT NULL,
			trigger_type       TEXT,
			symbol             TEXT NOT NULL,
			company_name       TEXT,
			as_of              TEXT,
			ocf_margin         TEXT,
			free_cash_flow     TEXT,
			fcf_yield          TEXT,
			current_ratio      TEXT,
			debt_equity_ratio  TEXT,
			return_on_assets   TEXT,
			return_on_equity   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fundamentals_symbol_ts ON fundamentals_snapshots(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS portfolio_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL UNIQUE,
			timestamp      INTEGER NOT NULL,
			trigger_type   TEXT,
			tickers        TEXT,
			risk_free_rate REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS model_performance (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			model           TEXT NOT NULL,
			expected_return REAL,
			volatility      REAL,
			sharpe          REAL
		)`,

		`CREATE TABLE IF NOT EXISTS allocations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			model        TEXT NOT NULL,
			ticker       TEXT NOT NULL,
			weight       REAL,
			fixed_weight REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_allocations_run ON allocations(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFundamentals(snap *FundamentalsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := snap.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	l := snap.Latest
	_, err := r.db.Exec(`INSERT INTO fundamentals_snapshots
		(run_id, timestamp, trigger_type, symbol, company_name, as_of,
		 ocf_margin, free_cash_flow, fcf_yield,
		 current_ratio, debt_equity_ratio, return_on_assets, return_on_equity)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, ts.Unix(), string(snap.Trigger), snap.Symbol, snap.CompanyName,
		l.AsOf.Format("2006-01-02"),
		l.OperatingCashFlowMargin, l.FreeCashFlow, l.FreeCashFlowYield,
		l.CurrentRatio, l.DebtToEquity, l.ReturnOnAssets, l.ReturnOnEquity,
	)
	return err
}

func (r *SQLiteRecorder) RecordPortfolio(run *PortfolioRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO portfolio_runs
		(run_id, timestamp, trigger_type, tickers, risk_free_rate)
		VALUES (?,?,?,?,?)`,
		run.RunID, time.Now().Unix(), string(run.Trigger),
		strings.Join(run.Tickers, ","), run.RiskFreeRate,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range run.Models {
		if _, err := tx.Exec(`INSERT INTO model_performance
			(run_id, model, expected_return, volatility, sharpe)
			VALUES (?,?,?,?,?)`,
			run.RunID, string(m.Kind),
			m.Performance.ExpectedReturn, m.Performance.Volatility, m.Performance.Sharpe,
		); err != nil {
			return fmt.Errorf("insert %s performance: %w", m.Kind, err)
		}
		for _, a := range m.Weights {
			fixed, _ := m.Fixed.Get(a.Ticker)
			if _, err := tx.Exec(`INSERT INTO allocations
				(run_id, model, ticker, weight, fixed_weight)
				VALUES (?,?,?,?,?)`,
				run.RunID, string(m.Kind), a.Ticker, a.Weight, fixed,
			); err != nil {
				return fmt.Errorf("insert %s allocation: %w", m.Kind, err)
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecentFundamentals(symbol string, limit int) ([]FundamentalsSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT run_id, timestamp, trigger_type, symbol, company_name, as_of,
		ocf_margin, free_cash_flow, fcf_yield,
		current_ratio, debt_equity_ratio, return_on_assets, return_on_equity
		FROM fundamentals_snapshots
		WHERE symbol = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FundamentalsSnapshot
	for rows.Next() {
		var (
			s       FundamentalsSnapshot
			ts      int64
			trigger string
			asOf    string
		)
		l := &s.Latest
		if err := rows.Scan(&s.RunID, &ts, &trigger, &s.Symbol, &s.CompanyName, &asOf,
			&l.OperatingCashFlowMargin, &l.FreeCashFlow, &l.FreeCashFlowYield,
			&l.CurrentRatio, &l.DebtToEquity, &l.ReturnOnAssets, &l.ReturnOnEquity,
		); err != nil {
			return nil, err
		}
		s.RecordedAt = time.Unix(ts, 0)
		s.Trigger = model.TriggerType(trigger)
		if t, err := time.Parse("2006-01-02", asOf); err == nil {
			l.AsOf = t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	zap.S().Info("closing sqlite recorder")
	return r.db.Close()
}
