// Package compare runs several strategies through the same
// simulator+metrics pipeline and ranks them on a chosen statistic.
package compare

import (
	"math"
	"sort"

	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/metrics"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// lowerIsBetter is the fixed table of metrics ranked ascending by
// magnitude. Everything else ranks descending on the raw value.
// MaxDrawdown and AverageLoss are stored as negative numbers, so the rank
// key is the absolute value: the strategy losing least ranks first.
var lowerIsBetter = map[string]bool{
	types.MetricMaxDrawdown: true,
	types.MetricAverageLoss: true,
}

// Comparator evaluates strategies independently over one price series.
// Every strategy gets a fresh cash and position state, so results cannot
// leak between runs.
type Comparator struct {
	sim            *simulator.Simulator
	riskFreeRate   float64
	periodsPerYear float64
	log            *logger.Logger
}

// Ranked is one row of a ranking: a strategy, its score on the ranking
// metric, and the full report behind it.
type Ranked struct {
	Strategy string              `yaml:"strategy" json:"strategy"`
	Score    float64             `yaml:"score" json:"score"`
	Report   types.MetricsReport `yaml:"report" json:"report"`
}

// New builds a Comparator. The simulator configuration is validated here,
// before any strategy runs.
func New(config simulator.Config, riskFreeRate, periodsPerYear float64, log *logger.Logger) (*Comparator, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	sim, err := simulator.New(config, log)
	if err != nil {
		return nil, err
	}

	if periodsPerYear <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
			"periods per year must be positive, got %v", periodsPerYear)
	}

	return &Comparator{
		sim:            sim,
		riskFreeRate:   riskFreeRate,
		periodsPerYear: periodsPerYear,
		log:            log,
	}, nil
}

// Compare runs every strategy through the full pipeline and returns a
// report per strategy name.
func (c *Comparator) Compare(priceSeries *series.PriceSeries, strategies []strategy.Strategy) (map[string]types.MetricsReport, error) {
	if len(strategies) == 0 {
		return nil, errors.New(errors.ErrCodeNoStrategies, "no strategies to compare")
	}

	reports := make(map[string]types.MetricsReport, len(strategies))

	for _, strat := range strategies {
		name := strat.Name()
		if _, exists := reports[name]; exists {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration,
				"duplicate strategy name: %s", name)
		}

		curve, trades, err := c.sim.Run(priceSeries, strat)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeStrategyEvaluation, err,
				"comparison run failed for strategy %s", name)
		}

		reports[name] = metrics.Compute(curve, trades, c.riskFreeRate, c.periodsPerYear)

		c.log.Debug("strategy evaluated",
			zap.String("strategy", name),
			zap.Float64("final_equity", reports[name].FinalEquity),
			zap.Int("trades", reports[name].TotalTrades),
		)
	}

	return reports, nil
}

// RankBy runs Compare and orders the results on the named metric. The sort
// is stable over the caller's strategy order, so equal scores keep their
// input order.
func (c *Comparator) RankBy(priceSeries *series.PriceSeries, strategies []strategy.Strategy, metricName string) ([]Ranked, error) {
	reports, err := c.Compare(priceSeries, strategies)
	if err != nil {
		return nil, err
	}

	ranked := make([]Ranked, 0, len(strategies))
	for _, strat := range strategies {
		report := reports[strat.Name()]

		score, err := report.Metric(metricName)
		if err != nil {
			return nil, err
		}

		ranked = append(ranked, Ranked{
			Strategy: strat.Name(),
			Score:    score,
			Report:   report,
		})
	}

	ascending := lowerIsBetter[metricName]
	sort.SliceStable(ranked, func(i, j int) bool {
		if ascending {
			return math.Abs(ranked[i].Score) < math.Abs(ranked[j].Score)
		}

		return ranked[i].Score > ranked[j].Score
	})

	return ranked, nil
}
