package optimizer

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/metrics"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// zeroScore is the threshold below which a test score counts as zero for
// the overfit ratio sentinel.
const zeroScore = 1e-12

// Config is the full optimization setup: the simulator the candidates run
// under, the grid, the walk-forward geometry, and the score to optimize.
type Config struct {
	Simulator   simulator.Config `yaml:"simulator" json:"simulator"`
	Grid        ParameterGrid    `yaml:"grid" json:"grid"`
	WalkForward WalkForward      `yaml:"walk_forward" json:"walk_forward"`
	ScoreMetric string           `yaml:"score_metric" json:"score_metric"`

	RiskFreeRate   float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year"`

	// Parallelism caps the worker count; 0 means one worker per CPU.
	Parallelism int `yaml:"parallelism" json:"parallelism"`

	// Progress, when set, is called after each candidate finishes. It may
	// be called from multiple goroutines.
	Progress func(completed, total int) `yaml:"-" json:"-"`
}

// Validate checks everything that can fail before any candidate runs.
func (c *Config) Validate() error {
	if err := c.Simulator.Validate(); err != nil {
		return err
	}

	if err := c.Grid.Validate(); err != nil {
		return err
	}

	if err := c.WalkForward.Validate(); err != nil {
		return err
	}

	if _, err := (types.MetricsReport{}).Metric(c.ScoreMetric); err != nil {
		return errors.Newf(errors.ErrCodeInvalidScoreMetric,
			"unrecognized score metric: %s", c.ScoreMetric)
	}

	if c.PeriodsPerYear <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriods,
			"periods per year must be positive, got %v", c.PeriodsPerYear)
	}

	return nil
}

// Candidate is the aggregated outcome of one parameter set across all
// walk-forward splits. A candidate whose simulation failed carries None
// scores and the failure message; it never aborts the sweep.
type Candidate struct {
	Index      int                   `yaml:"index" json:"index"`
	Parameters strategy.ParameterSet `yaml:"parameters" json:"parameters"`

	TrainScore optional.Option[float64] `yaml:"train_score" json:"train_score"`
	TestScore  optional.Option[float64] `yaml:"test_score" json:"test_score"`
	// OverfitRatio is train/test; +Inf when the test score is zero but
	// the train score is not. Near 1 indicates generalization.
	OverfitRatio optional.Option[float64] `yaml:"overfit_ratio" json:"overfit_ratio"`

	// Rank orders successful candidates from best to worst; 0 for failed
	// candidates.
	Rank    int    `yaml:"rank" json:"rank"`
	Failure string `yaml:"failure,omitempty" json:"failure,omitempty"`
}

// Failed reports whether this candidate's evaluation errored.
func (c *Candidate) Failed() bool {
	return c.Failure != ""
}

// Result is the outcome of a full grid sweep.
type Result struct {
	ScoreMetric string `yaml:"score_metric" json:"score_metric"`
	// Candidates holds every grid point in enumeration order.
	Candidates []Candidate `yaml:"candidates" json:"candidates"`
	Best       Candidate   `yaml:"best" json:"best"`
	Splits     int         `yaml:"splits" json:"splits"`
	Failed     int         `yaml:"failed" json:"failed"`

	// Diagnostic statistics over the successful candidates' test scores.
	BestTestScore  float64 `yaml:"best_test_score" json:"best_test_score"`
	WorstTestScore float64 `yaml:"worst_test_score" json:"worst_test_score"`
	MeanTestScore  float64 `yaml:"mean_test_score" json:"mean_test_score"`
}

// Optimizer owns one configured sweep.
type Optimizer struct {
	config  Config
	factory strategy.Factory
	log     *logger.Logger
}

// New validates the configuration and builds an Optimizer.
func New(config Config, factory strategy.Factory, log *logger.Logger) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if factory == nil {
		return nil, errors.New(errors.ErrCodeStrategyNotFound, "strategy factory is nil")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Optimizer{
		config:  config,
		factory: factory,
		log:     log,
	}, nil
}

// Optimize enumerates the grid, evaluates every candidate over every
// walk-forward split, and selects the one with the highest average test
// score. Ties prefer the overfit ratio closest to 1, then the earlier
// enumeration index.
//
// Candidates are independent units of work: they run on a bounded worker
// pool, each with its own account state, and results are keyed by
// enumeration index so scheduling order cannot change the selected
// optimum. Cancellation is checked between candidates; an aborted sweep
// returns OptimizationAborted without partial results.
func (o *Optimizer) Optimize(ctx context.Context, priceSeries *series.PriceSeries) (*Result, error) {
	combos, err := o.config.Grid.Combinations()
	if err != nil {
		return nil, err
	}

	splits, err := o.config.WalkForward.Splits(priceSeries, o.minimumWindow(combos))
	if err != nil {
		return nil, err
	}

	sim, err := simulator.New(o.config.Simulator, o.log)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(combos))
	jobs := make(chan int)

	workers := o.config.Parallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				candidates[idx] = o.evaluate(sim, combos[idx], idx, splits)

				if o.config.Progress != nil {
					o.config.Progress(int(completed.Add(1)), len(combos))
				}
			}
		}()
	}

	var cancelled bool
dispatch:
	for idx := range combos {
		// cancellation wins over dispatch when both are ready
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		default:
		}

		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled {
		return nil, errors.Wrap(errors.ErrCodeOptimizationAborted, "grid search cancelled", ctx.Err())
	}

	return o.collect(candidates, len(splits))
}

// minimumWindow is the largest warmup any candidate needs. A factory
// error here is not fatal; that candidate will fail again during
// evaluation and be recorded there.
func (o *Optimizer) minimumWindow(combos []strategy.ParameterSet) int {
	minBars := 1
	for _, params := range combos {
		strat, err := o.factory(params)
		if err != nil {
			continue
		}

		if warmup := strat.WarmupPeriod(); warmup > minBars {
			minBars = warmup
		}
	}

	return minBars
}

// evaluate runs one candidate across all splits and aggregates its scores.
func (o *Optimizer) evaluate(sim *simulator.Simulator, params strategy.ParameterSet, index int, splits []Split) Candidate {
	candidate := Candidate{
		Index:      index,
		Parameters: params,
	}

	var trainTotal, testTotal float64

	for _, split := range splits {
		trainScore, err := o.score(sim, params, split.Train)
		if err != nil {
			return o.failed(candidate, err)
		}

		testScore, err := o.score(sim, params, split.Test)
		if err != nil {
			return o.failed(candidate, err)
		}

		trainTotal += trainScore
		testTotal += testScore
	}

	avgTrain := trainTotal / float64(len(splits))
	avgTest := testTotal / float64(len(splits))

	candidate.TrainScore = optional.Some(avgTrain)
	candidate.TestScore = optional.Some(avgTest)
	candidate.OverfitRatio = optional.Some(overfitRatio(avgTrain, avgTest))

	return candidate
}

// score runs the pipeline on one window. Every run gets a fresh strategy
// instance so indicator state cannot leak across windows.
func (o *Optimizer) score(sim *simulator.Simulator, params strategy.ParameterSet, window *series.PriceSeries) (float64, error) {
	strat, err := o.factory(params)
	if err != nil {
		return 0, err
	}

	curve, trades, err := sim.Run(window, strat)
	if err != nil {
		return 0, err
	}

	report := metrics.Compute(curve, trades, o.config.RiskFreeRate, o.config.PeriodsPerYear)

	return report.Metric(o.config.ScoreMetric)
}

func (o *Optimizer) failed(candidate Candidate, err error) Candidate {
	candidate.Failure = err.Error()
	candidate.TrainScore = optional.None[float64]()
	candidate.TestScore = optional.None[float64]()
	candidate.OverfitRatio = optional.None[float64]()

	o.log.Warn("candidate evaluation failed",
		zap.Int("candidate", candidate.Index),
		zap.Any("parameters", candidate.Parameters),
		zap.Error(err),
	)

	return candidate
}

// overfitRatio is train/test. A dead test window with a live train window
// is the overfitting worst case: +Inf. Both dead means nothing was learned
// either way: 0.
func overfitRatio(train, test float64) float64 {
	if math.Abs(test) < zeroScore {
		if math.Abs(train) < zeroScore {
			return 0
		}

		return math.Inf(1)
	}

	return train / test
}

// collect ranks the candidates and assembles the sweep result.
func (o *Optimizer) collect(candidates []Candidate, splits int) (*Result, error) {
	order := make([]int, 0, len(candidates))
	failed := 0

	for i := range candidates {
		if candidates[i].Failed() {
			failed++
			continue
		}

		order = append(order, i)
	}

	if len(order) == 0 {
		return nil, errors.Newf(errors.ErrCodeCandidateFailed,
			"all %d candidates failed", len(candidates))
	}

	// best test score first; ties prefer the overfit ratio closest to 1,
	// then the earlier enumeration index
	sort.SliceStable(order, func(a, b int) bool {
		left, right := candidates[order[a]], candidates[order[b]]

		leftScore, rightScore := left.TestScore.Unwrap(), right.TestScore.Unwrap()
		if leftScore != rightScore {
			return leftScore > rightScore
		}

		leftFit := math.Abs(left.OverfitRatio.Unwrap() - 1)
		rightFit := math.Abs(right.OverfitRatio.Unwrap() - 1)
		if leftFit != rightFit {
			return leftFit < rightFit
		}

		return left.Index < right.Index
	})

	var total float64
	for rank, idx := range order {
		candidates[idx].Rank = rank + 1
		total += candidates[idx].TestScore.Unwrap()
	}

	result := &Result{
		ScoreMetric:    o.config.ScoreMetric,
		Candidates:     candidates,
		Best:           candidates[order[0]],
		Splits:         splits,
		Failed:         failed,
		BestTestScore:  candidates[order[0]].TestScore.Unwrap(),
		WorstTestScore: candidates[order[len(order)-1]].TestScore.Unwrap(),
		MeanTestScore:  total / float64(len(order)),
	}

	o.log.Info("grid search finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("failed", failed),
		zap.Int("splits", splits),
		zap.Any("best_parameters", result.Best.Parameters),
		zap.Float64("best_test_score", result.BestTestScore),
	)

	return result, nil
}
