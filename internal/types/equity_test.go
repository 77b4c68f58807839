package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type EquityTestSuite struct {
	suite.Suite
}

func TestEquitySuite(t *testing.T) {
	suite.Run(t, new(EquityTestSuite))
}

func (suite *EquityTestSuite) curve(values ...float64) EquityCurve {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := make(EquityCurve, 0, len(values))

	for i, v := range values {
		curve = append(curve, EquityPoint{
			Time:        start.Add(time.Duration(i) * time.Hour),
			Cash:        v,
			TotalEquity: v,
		})
	}

	return curve
}

func (suite *EquityTestSuite) TestInitialAndFinal() {
	curve := suite.curve(100, 105, 110)
	suite.InDelta(100.0, curve.Initial(), 1e-9)
	suite.InDelta(110.0, curve.Final(), 1e-9)

	var empty EquityCurve
	suite.Zero(empty.Initial())
	suite.Zero(empty.Final())
}

func (suite *EquityTestSuite) TestReturns() {
	curve := suite.curve(100, 110, 99)
	returns := curve.Returns()
	suite.Len(returns, 2)
	suite.InDelta(0.10, returns[0], 1e-9)
	suite.InDelta(-0.10, returns[1], 1e-9)
}

func (suite *EquityTestSuite) TestReturnsShortCurve() {
	suite.Nil(suite.curve(100).Returns())
	suite.Nil(EquityCurve{}.Returns())
}

func (suite *EquityTestSuite) TestReturnsZeroEquityPeriod() {
	curve := suite.curve(100, 0, 50)
	returns := curve.Returns()
	suite.Len(returns, 2)
	suite.InDelta(-1.0, returns[0], 1e-9)
	suite.Zero(returns[1])
}
