// Package results persists finished evaluation runs so they can be listed
// and inspected after the fact.
package results

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// Run is one persisted simulator+metrics evaluation.
type Run struct {
	ID        string              `yaml:"id" json:"id"`
	CreatedAt time.Time           `yaml:"created_at" json:"created_at"`
	Symbol    string              `yaml:"symbol" json:"symbol"`
	Strategy  string              `yaml:"strategy" json:"strategy"`
	Report    types.MetricsReport `yaml:"report" json:"report"`
}

// Store keeps runs and their trade logs in a DuckDB database.
type Store struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewStore opens a store at path; an empty path keeps everything in
// memory.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to open result store", err)
	}

	return &Store{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}, nil
}

// Initialize creates the runs, trades, and sweep tables.
func (s *Store) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			symbol TEXT,
			strategy TEXT,
			final_equity DOUBLE,
			total_return DOUBLE,
			total_trades INTEGER,
			report_json TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to create runs table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_trades (
			run_id TEXT,
			trade_id TEXT,
			symbol TEXT,
			strategy TEXT,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			quantity BIGINT,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			commission DOUBLE,
			slippage DOUBLE,
			realized_pnl DOUBLE,
			exit_reason TEXT,
			entry_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to create run_trades table", err)
	}

	return s.initializeSweeps()
}

// SaveRun persists a finished run and its trade log, returning the new
// run id.
func (s *Store) SaveRun(symbol, strategyName string, report types.MetricsReport, trades []types.Trade) (string, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to encode report", err)
	}

	runID := uuid.New().String()

	query, args, err := s.sq.
		Insert("runs").
		Columns("run_id", "created_at", "symbol", "strategy", "final_equity", "total_return", "total_trades", "report_json").
		Values(runID, time.Now().UTC(), symbol, strategyName, report.FinalEquity, report.TotalReturn, report.TotalTrades, string(reportJSON)).
		ToSql()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build run insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to insert run", err)
	}

	for i := range trades {
		if err := s.insertTrade(runID, &trades[i]); err != nil {
			return "", err
		}
	}

	s.log.Debug("run saved",
		zap.String("run_id", runID),
		zap.String("strategy", strategyName),
		zap.Int("trades", len(trades)),
	)

	return runID, nil
}

func (s *Store) insertTrade(runID string, trade *types.Trade) error {
	var exitTime, exitPrice interface{}
	if trade.ExitTime.IsSome() {
		exitTime = trade.ExitTime.Unwrap()
	}
	if trade.ExitPrice.IsSome() {
		exitPrice = trade.ExitPrice.Unwrap()
	}

	query, args, err := s.sq.
		Insert("run_trades").
		Columns("run_id", "trade_id", "symbol", "strategy", "entry_time", "entry_price", "quantity",
			"exit_time", "exit_price", "commission", "slippage", "realized_pnl", "exit_reason", "entry_reason").
		Values(runID, trade.ID, trade.Symbol, trade.Strategy, trade.EntryTime, trade.EntryPrice, trade.Quantity,
			exitTime, exitPrice, trade.Commission, trade.Slippage, trade.RealizedPnL, string(trade.ExitReason), trade.EntryReason).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build trade insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to insert trade", err)
	}

	return nil
}

// ListRuns returns all saved runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	query, args, err := s.sq.
		Select("run_id", "created_at", "symbol", "strategy", "report_json").
		From("runs").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build list query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to list runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// GetRun fetches one run by id.
func (s *Store) GetRun(runID string) (Run, error) {
	query, args, err := s.sq.
		Select("run_id", "created_at", "symbol", "strategy", "report_json").
		From("runs").
		Where(squirrel.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build get query", err)
	}

	run, err := scanRun(s.db.QueryRow(query, args...).Scan)
	if err == sql.ErrNoRows {
		return Run{}, errors.Newf(errors.ErrCodeDataNotFound, "run not found: %s", runID)
	}

	return run, err
}

func scanRun(scan func(...any) error) (Run, error) {
	var (
		run        Run
		reportJSON string
	)

	if err := scan(&run.ID, &run.CreatedAt, &run.Symbol, &run.Strategy, &reportJSON); err != nil {
		return Run{}, err
	}

	if err := json.Unmarshal([]byte(reportJSON), &run.Report); err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to decode report", err)
	}

	return run, nil
}

// GetTrades fetches the trade log of one run in entry order.
func (s *Store) GetTrades(runID string) ([]types.Trade, error) {
	query, args, err := s.sq.
		Select("trade_id", "symbol", "strategy", "entry_time", "entry_price", "quantity",
			"exit_time", "exit_price", "commission", "slippage", "realized_pnl", "exit_reason", "entry_reason").
		From("run_trades").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("entry_time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build trades query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to load trades", err)
	}
	defer rows.Close()

	var trades []types.Trade
	for rows.Next() {
		var (
			trade      types.Trade
			exitTime   sql.NullTime
			exitPrice  sql.NullFloat64
			exitReason string
		)

		err := rows.Scan(&trade.ID, &trade.Symbol, &trade.Strategy, &trade.EntryTime, &trade.EntryPrice, &trade.Quantity,
			&exitTime, &exitPrice, &trade.Commission, &trade.Slippage, &trade.RealizedPnL, &exitReason, &trade.EntryReason)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to scan trade", err)
		}

		if exitTime.Valid {
			trade.ExitTime = optional.Some(exitTime.Time)
		}
		if exitPrice.Valid {
			trade.ExitPrice = optional.Some(exitPrice.Float64)
		}
		trade.ExitReason = types.ExitReason(exitReason)

		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
