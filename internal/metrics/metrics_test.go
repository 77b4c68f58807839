package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/mocks"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func curveFromEquities(equities ...float64) types.EquityCurve {
	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	curve := make(types.EquityCurve, len(equities))
	for i, equity := range equities {
		curve[i] = types.EquityPoint{
			Time:        start.Add(time.Duration(i) * time.Minute),
			Cash:        equity,
			TotalEquity: equity,
		}
	}

	return curve
}

func closedTrade(pnl float64) types.Trade {
	entry := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

	return types.Trade{
		Symbol:      "TEST",
		EntryTime:   entry,
		EntryPrice:  100,
		Quantity:    10,
		ExitTime:    optional.Some(entry.Add(time.Hour)),
		ExitPrice:   optional.Some(100 + pnl/10),
		RealizedPnL: pnl,
	}
}

func openTrade() types.Trade {
	return types.Trade{
		Symbol:     "TEST",
		EntryTime:  time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		EntryPrice: 100,
		Quantity:   10,
	}
}

// equities 100 -> 110 -> 104.5: per-period returns +10% and -5%, with
// periodsPerYear equal to the period count so annualization is the
// identity.
func (suite *MetricsTestSuite) TestCurveRatios() {
	curve := curveFromEquities(100, 110, 104.5)

	report := Compute(curve, nil, 0, 2)

	suite.InDelta(0.045, report.TotalReturn, 1e-9)
	suite.InDelta(0.045, report.AnnualizedReturn, 1e-9)
	// mean 0.025 over sample stdev 0.1060660 times sqrt(2)
	suite.InDelta(1.0/3.0, report.SharpeRatio, 1e-9)
	// a single losing period has no sample deviation
	suite.Zero(report.SortinoRatio)
	suite.InDelta(-0.05, report.MaxDrawdown, 1e-9)
	suite.InDelta(0.9, report.CalmarRatio, 1e-9)
	suite.InDelta(0.9, report.RecoveryFactor, 1e-9)
	suite.InDelta(104.5, report.FinalEquity, 1e-9)
}

// returns +5%, -5%, -3%: two distinct losing periods give a real downside
// deviation of 0.0141421, mean excess -0.01.
func (suite *MetricsTestSuite) TestSortinoWithDistinctLosses() {
	curve := curveFromEquities(100, 105, 99.75, 96.7575)

	report := Compute(curve, nil, 0, 3)
	suite.InDelta(-1.2247449, report.SortinoRatio, 1e-6)
}

func (suite *MetricsTestSuite) TestFlatCurveSentinels() {
	curve := curveFromEquities(100, 100, 100, 100)

	report := Compute(curve, nil, 0.02, 252)

	suite.Zero(report.TotalReturn)
	suite.Zero(report.SharpeRatio)
	suite.Zero(report.SortinoRatio)
	suite.Zero(report.MaxDrawdown)
	suite.Zero(report.CalmarRatio)
	suite.Zero(report.RecoveryFactor)
}

func (suite *MetricsTestSuite) TestDrawdownBounds() {
	curve := curveFromEquities(100, 120, 60, 90)

	report := Compute(curve, nil, 0, 252)

	suite.InDelta(-0.5, report.MaxDrawdown, 1e-9)
	suite.LessOrEqual(report.MaxDrawdown, 0.0)
	suite.GreaterOrEqual(report.MaxDrawdown, -1.0)
}

func (suite *MetricsTestSuite) TestTradeStatistics() {
	curve := curveFromEquities(100000, 100100)
	trades := []types.Trade{
		closedTrade(100),
		closedTrade(50),
		closedTrade(-50),
		openTrade(),
	}

	report := Compute(curve, trades, 0, 252)

	suite.Equal(4, report.TotalTrades)
	suite.Equal(2, report.WinningTrades)
	suite.Equal(1, report.LosingTrades)
	suite.Equal(1, report.OpenTrades)
	suite.InDelta(2.0/3.0, report.WinRate, 1e-9)
	suite.InDelta(3.0, report.ProfitFactor, 1e-9)
	suite.InDelta(75.0, report.AverageWin, 1e-9)
	suite.InDelta(-50.0, report.AverageLoss, 1e-9)
	suite.InDelta(2.0/3.0*75-1.0/3.0*50, report.Expectancy, 1e-9)
	suite.InDelta(1.5, report.RiskRewardRatio, 1e-9)
}

func (suite *MetricsTestSuite) TestProfitFactorSentinels() {
	curve := curveFromEquities(100000, 100100)

	noTrades := Compute(curve, nil, 0, 252)
	suite.Zero(noTrades.ProfitFactor)
	suite.Zero(noTrades.WinRate)

	allWins := Compute(curve, []types.Trade{closedTrade(100), closedTrade(25)}, 0, 252)
	suite.True(math.IsInf(allWins.ProfitFactor, 1))
	suite.InDelta(1.0, allWins.WinRate, 1e-9)

	onlyOpen := Compute(curve, []types.Trade{openTrade()}, 0, 252)
	suite.Zero(onlyOpen.ProfitFactor)
	suite.Equal(1, onlyOpen.OpenTrades)
}

func (suite *MetricsTestSuite) TestEmptyCurve() {
	report := Compute(nil, nil, 0, 252)
	suite.Equal(types.MetricsReport{}, report)
}

// A flat price series through the real pipeline: no volatility means the
// zero-stdev sentinel for sharpe and no drawdown.
func (suite *MetricsTestSuite) TestFlatSeriesEndToEnd() {
	ps, err := series.New("TEST", mocks.FlatBars("TEST", 50, 100))
	suite.Require().NoError(err)

	sim, err := simulator.New(simulator.TestConfig(100000), nil)
	suite.Require().NoError(err)

	strat, err := strategy.NewSMACrossover(5, 20)
	suite.Require().NoError(err)

	curve, trades, err := sim.Run(ps, strat)
	suite.Require().NoError(err)

	report := Compute(curve, trades, 0.02, 252)
	suite.Zero(report.SharpeRatio)
	suite.Zero(report.MaxDrawdown)
	suite.Zero(report.TotalReturn)
}
