package datasource

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// DuckDB reads bars from CSV or Parquet files through an embedded DuckDB
// instance. The file is exposed as a bars view, so loading never copies
// the data into the database.
type DuckDB struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewDuckDB opens a DuckDB database at path; an empty path opens an
// in-memory instance.
func NewDuckDB(path string, log *logger.Logger) (*DuckDB, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &DuckDB{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: log,
	}, nil
}

// InitializeCSV exposes a CSV file with time, symbol, open, high, low,
// close, volume columns as the bars view.
func (d *DuckDB) InitializeCSV(path string) error {
	return d.createView(fmt.Sprintf("read_csv_auto('%s')", path))
}

// InitializeParquet exposes a Parquet file as the bars view.
func (d *DuckDB) InitializeParquet(path string) error {
	return d.createView(fmt.Sprintf("read_parquet('%s')", path))
}

// InitializeFile picks the reader from the file extension.
func (d *DuckDB) InitializeFile(path string) error {
	switch {
	case strings.HasSuffix(path, ".csv"):
		return d.InitializeCSV(path)
	case strings.HasSuffix(path, ".parquet"):
		return d.InitializeParquet(path)
	default:
		return errors.Newf(errors.ErrCodeDataParseFailed, "unsupported data file: %s", path)
	}
}

func (d *DuckDB) createView(reader string) error {
	d.log.Debug("initializing bars view", zap.String("reader", reader))

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// squirrel has no CREATE VIEW builder; the reader expression is built
	// from a caller-supplied path, not user input.
	query := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM %s;`, reader)
	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrap(errors.ErrCodeDataParseFailed, "failed to create bars view", err)
	}

	return nil
}

// Load implements DataSource.
func (d *DuckDB) Load(symbol string, start, end optional.Option[time.Time]) (*series.PriceSeries, error) {
	builder := d.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("time ASC")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load bars for %s", symbol)
	}
	defer rows.Close()

	var bars []types.Bar
	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "row iteration failed", err)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars found for %s", symbol)
	}

	return series.New(symbol, bars)
}

// Symbols implements DataSource.
func (d *DuckDB) Symbols() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT symbol FROM bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list symbols", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	return symbols, rows.Err()
}

// Count implements DataSource.
func (d *DuckDB) Count(symbol string) (int, error) {
	query, args, err := d.sq.
		Select("COUNT(*)").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count bars for %s", symbol)
	}

	return count, nil
}

// Close implements DataSource.
func (d *DuckDB) Close() error {
	return d.db.Close()
}
