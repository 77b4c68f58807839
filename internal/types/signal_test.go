package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SignalTestSuite struct {
	suite.Suite
}

func TestSignalSuite(t *testing.T) {
	suite.Run(t, new(SignalTestSuite))
}

func (suite *SignalTestSuite) TestValidateValidSignal() {
	signal := Signal{
		Time:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Direction:  SignalBuy,
		Confidence: 0.8,
		Reason:     "fast MA crossed above slow MA",
	}
	suite.NoError(signal.Validate())
}

func (suite *SignalTestSuite) TestValidateInvalidDirection() {
	signal := Signal{
		Time:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Direction:  SignalDirection("SHORT"),
		Confidence: 0.8,
	}
	suite.Error(signal.Validate())
}

func (suite *SignalTestSuite) TestValidateConfidenceOutOfRange() {
	signal := Signal{
		Time:       time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Direction:  SignalBuy,
		Confidence: 1.5,
	}
	suite.Error(signal.Validate())

	signal.Confidence = -0.1
	suite.Error(signal.Validate())
}

func (suite *SignalTestSuite) TestHold() {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	signal := Hold(ts, "warming up")
	suite.Equal(SignalHold, signal.Direction)
	suite.Equal(ts, signal.Time)
	suite.Zero(signal.Confidence)
	suite.NoError(signal.Validate())
}
