package results

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/optimizer"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// Sweep is one persisted grid-optimization result.
type Sweep struct {
	ID          string    `yaml:"id" json:"id"`
	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	Symbol      string    `yaml:"symbol" json:"symbol"`
	Strategy    string    `yaml:"strategy" json:"strategy"`
	ScoreMetric string    `yaml:"score_metric" json:"score_metric"`
	Splits      int       `yaml:"splits" json:"splits"`
	Failed      int       `yaml:"failed" json:"failed"`
	BestIndex   int       `yaml:"best_index" json:"best_index"`
}

func (s *Store) initializeSweeps() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sweeps (
			sweep_id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			symbol TEXT,
			strategy TEXT,
			score_metric TEXT,
			splits INTEGER,
			failed INTEGER,
			best_index INTEGER,
			best_test_score DOUBLE,
			worst_test_score DOUBLE,
			mean_test_score DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to create sweeps table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sweep_candidates (
			sweep_id TEXT,
			candidate_index INTEGER,
			parameters_json TEXT,
			train_score DOUBLE,
			test_score DOUBLE,
			overfit_ratio DOUBLE,
			rank INTEGER,
			failure TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to create sweep_candidates table", err)
	}

	return nil
}

// SaveSweep persists a finished grid sweep and every candidate in it,
// returning the new sweep id.
func (s *Store) SaveSweep(symbol, strategyName string, result optimizer.Result) (string, error) {
	sweepID := uuid.New().String()

	query, args, err := s.sq.Insert("sweeps").
		Columns("sweep_id", "created_at", "symbol", "strategy", "score_metric",
			"splits", "failed", "best_index",
			"best_test_score", "worst_test_score", "mean_test_score").
		Values(sweepID, time.Now().UTC(), symbol, strategyName, result.ScoreMetric,
			result.Splits, result.Failed, result.Best.Index,
			result.BestTestScore, result.WorstTestScore, result.MeanTestScore).
		ToSql()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build sweep insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return "", errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to insert sweep", err)
	}

	for i := range result.Candidates {
		if err := s.insertCandidate(sweepID, &result.Candidates[i]); err != nil {
			return "", err
		}
	}

	s.log.Debug("saved sweep",
		zap.String("sweep_id", sweepID),
		zap.String("strategy", strategyName),
		zap.Int("candidates", len(result.Candidates)),
	)

	return sweepID, nil
}

func (s *Store) insertCandidate(sweepID string, candidate *optimizer.Candidate) error {
	params, err := json.Marshal(candidate.Parameters)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to marshal candidate parameters", err)
	}

	var trainScore, testScore, overfit interface{}
	if v, err := candidate.TrainScore.Take(); err == nil {
		trainScore = v
	}

	if v, err := candidate.TestScore.Take(); err == nil {
		testScore = v
	}

	if v, err := candidate.OverfitRatio.Take(); err == nil {
		overfit = v
	}

	query, args, err := s.sq.Insert("sweep_candidates").
		Columns("sweep_id", "candidate_index", "parameters_json",
			"train_score", "test_score", "overfit_ratio", "rank", "failure").
		Values(sweepID, candidate.Index, string(params),
			trainScore, testScore, overfit, candidate.Rank, candidate.Failure).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build candidate insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to insert candidate", err)
	}

	return nil
}

// ListSweeps returns all persisted sweeps, newest first.
func (s *Store) ListSweeps() ([]Sweep, error) {
	query, args, err := s.sq.Select("sweep_id", "created_at", "symbol", "strategy",
		"score_metric", "splits", "failed", "best_index").
		From("sweeps").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build sweep query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to query sweeps", err)
	}
	defer rows.Close()

	var sweeps []Sweep

	for rows.Next() {
		var sweep Sweep
		if err := rows.Scan(&sweep.ID, &sweep.CreatedAt, &sweep.Symbol, &sweep.Strategy,
			&sweep.ScoreMetric, &sweep.Splits, &sweep.Failed, &sweep.BestIndex); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to scan sweep", err)
		}

		sweeps = append(sweeps, sweep)
	}

	return sweeps, rows.Err()
}

// GetCandidates returns every candidate of one sweep in enumeration order.
func (s *Store) GetCandidates(sweepID string) ([]optimizer.Candidate, error) {
	query, args, err := s.sq.Select("candidate_index", "parameters_json",
		"train_score", "test_score", "overfit_ratio", "rank", "failure").
		From("sweep_candidates").
		Where(squirrel.Eq{"sweep_id": sweepID}).
		OrderBy("candidate_index ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to build candidate query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to query candidates", err)
	}
	defer rows.Close()

	var candidates []optimizer.Candidate

	for rows.Next() {
		var (
			candidate  optimizer.Candidate
			paramsJSON string
			trainScore sql.NullFloat64
			testScore  sql.NullFloat64
			overfit    sql.NullFloat64
		)

		if err := rows.Scan(&candidate.Index, &paramsJSON,
			&trainScore, &testScore, &overfit, &candidate.Rank, &candidate.Failure); err != nil {
			return nil, errors.Wrap(errors.ErrCodeResultStoreFailed, "failed to scan candidate", err)
		}

		candidate.Parameters = strategy.ParameterSet{}
		if err := json.Unmarshal([]byte(paramsJSON), &candidate.Parameters); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataParseFailed, "failed to decode candidate parameters", err)
		}

		candidate.TrainScore = optionalFloat(trainScore)
		candidate.TestScore = optionalFloat(testScore)
		candidate.OverfitRatio = optionalFloat(overfit)

		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

func optionalFloat(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
