package compare

import (
	"strings"
	"testing"

	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/mocks"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type CompareTestSuite struct {
	suite.Suite

	ps *series.PriceSeries
}

func TestCompareSuite(t *testing.T) {
	suite.Run(t, new(CompareTestSuite))
}

func (suite *CompareTestSuite) SetupTest() {
	ps, err := series.New("TEST", mocks.LinearBars("TEST", 20, 100, 120))
	suite.Require().NoError(err)
	suite.ps = ps
}

func (suite *CompareTestSuite) newComparator() *Comparator {
	comparator, err := New(simulator.TestConfig(100000), 0, 252, nil)
	suite.Require().NoError(err)

	return comparator
}

// On a monotonic rise, a strategy that buys and holds must outscore one
// that never trades.
func (suite *CompareTestSuite) TestCompareIndependentRuns() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)
	idler := strategy.NewScripted("idler", nil, 0.9)

	reports, err := suite.newComparator().Compare(suite.ps, []strategy.Strategy{buyer, idler})
	suite.Require().NoError(err)
	suite.Require().Len(reports, 2)

	suite.Greater(reports["buyer"].TotalReturn, 0.0)
	suite.Zero(reports["idler"].TotalReturn)
	suite.Equal(1, reports["buyer"].TotalTrades)
	suite.Zero(reports["idler"].TotalTrades)
}

func (suite *CompareTestSuite) TestCompareStateIsolation() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)
	comparator := suite.newComparator()

	first, err := comparator.Compare(suite.ps, []strategy.Strategy{buyer})
	suite.Require().NoError(err)

	second, err := comparator.Compare(suite.ps, []strategy.Strategy{buyer})
	suite.Require().NoError(err)

	suite.Equal(first["buyer"], second["buyer"])
}

func (suite *CompareTestSuite) TestRankByDescendingMetric() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)
	idler := strategy.NewScripted("idler", nil, 0.9)

	ranked, err := suite.newComparator().RankBy(suite.ps, []strategy.Strategy{idler, buyer}, types.MetricTotalReturn)
	suite.Require().NoError(err)
	suite.Require().Len(ranked, 2)

	suite.Equal("buyer", ranked[0].Strategy)
	suite.Equal("idler", ranked[1].Strategy)
	suite.Greater(ranked[0].Score, ranked[1].Score)
}

// max_drawdown ranks ascending on magnitude: the strategy that loses least
// comes first.
func (suite *CompareTestSuite) TestRankByMaxDrawdownAscending() {
	bars := mocks.LinearBars("TEST", 10, 100, 110)
	// a dip in the middle so the buyer carries a real drawdown
	for i := 4; i <= 6; i++ {
		bars[i].Low = 80
		bars[i].Close = 85
		bars[i].Open = 85
		bars[i].High = 86
	}

	ps, err := series.New("TEST", bars)
	suite.Require().NoError(err)

	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)
	idler := strategy.NewScripted("idler", nil, 0.9)

	ranked, err := suite.newComparator().RankBy(ps, []strategy.Strategy{buyer, idler}, types.MetricMaxDrawdown)
	suite.Require().NoError(err)

	suite.Equal("idler", ranked[0].Strategy)
	suite.Zero(ranked[0].Score)
	suite.Equal("buyer", ranked[1].Strategy)
	suite.Less(ranked[1].Score, 0.0)
}

func (suite *CompareTestSuite) TestCompareRejections() {
	comparator := suite.newComparator()

	_, err := comparator.Compare(suite.ps, nil)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoStrategies))

	twin := strategy.NewScripted("twin", nil, 0.9)
	_, err = comparator.Compare(suite.ps, []strategy.Strategy{twin, twin})
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *CompareTestSuite) TestRankByUnknownMetric() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)

	_, err := suite.newComparator().RankBy(suite.ps, []strategy.Strategy{buyer}, "alpha_decay")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownMetric))
}

func (suite *CompareTestSuite) TestRenderTable() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)
	idler := strategy.NewScripted("idler", nil, 0.9)

	ranked, err := suite.newComparator().RankBy(suite.ps, []strategy.Strategy{buyer, idler}, types.MetricTotalReturn)
	suite.Require().NoError(err)

	rendered := RenderTable(ranked, types.MetricTotalReturn)
	suite.Contains(rendered, "STRATEGY")
	suite.Contains(rendered, "TOTAL_RETURN")
	suite.Contains(rendered, "buyer")
	suite.Contains(rendered, "idler")
}

func (suite *CompareTestSuite) TestRenderCSV() {
	buyer := strategy.NewScripted("buyer", map[int]types.SignalDirection{0: types.SignalBuy}, 0.9)

	ranked, err := suite.newComparator().RankBy(suite.ps, []strategy.Strategy{buyer}, types.MetricTotalReturn)
	suite.Require().NoError(err)

	rendered, err := RenderCSV(ranked)
	suite.Require().NoError(err)

	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	suite.Require().Len(lines, 2)
	suite.Contains(lines[0], "rank,strategy,total_return")
	suite.Contains(lines[1], "1,buyer")
}
