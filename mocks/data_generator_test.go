package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) TestGenerateCount() {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 500

	bars := gen.Generate(config)
	suite.Len(bars, 500)
}

func (suite *DataGeneratorTestSuite) TestGenerateDeterministicWithSeed() {
	config := DefaultConfig()
	config.Count = 100

	first := NewDataGenerator(42).Generate(config)
	second := NewDataGenerator(42).Generate(config)
	suite.Equal(first, second)

	different := NewDataGenerator(7).Generate(config)
	suite.NotEqual(first, different)
}

func (suite *DataGeneratorTestSuite) TestGenerateOHLCInvariants() {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 1000

	bars := gen.Generate(config)
	for i, bar := range bars {
		suite.GreaterOrEqual(bar.High, bar.Open, "bar %d", i)
		suite.GreaterOrEqual(bar.High, bar.Close, "bar %d", i)
		suite.LessOrEqual(bar.Low, bar.Open, "bar %d", i)
		suite.LessOrEqual(bar.Low, bar.Close, "bar %d", i)
		suite.Positive(bar.Low, "bar %d", i)
		suite.Positive(bar.Volume, "bar %d", i)
	}
}

func (suite *DataGeneratorTestSuite) TestGenerateTimestamps() {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 10
	config.Interval = 5 * time.Minute

	bars := gen.Generate(config)
	for i := 1; i < len(bars); i++ {
		suite.Equal(5*time.Minute, bars[i].Time.Sub(bars[i-1].Time))
	}
}

func (suite *DataGeneratorTestSuite) TestGenerateSeriesIsValid() {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 200

	s, err := gen.GenerateSeries(config)
	suite.NoError(err)
	suite.Equal(200, s.Len())
	suite.Equal("TEST", s.Symbol())
}

func (suite *DataGeneratorTestSuite) TestLinearBars() {
	bars := LinearBars("TEST", 10, 100, 110)
	suite.Len(bars, 10)
	suite.InDelta(100.0, bars[0].Close, 1e-9)
	suite.InDelta(110.0, bars[9].Close, 1e-9)

	// Evenly spaced closes
	for i := 1; i < len(bars); i++ {
		suite.InDelta(bars[i].Close-bars[i-1].Close, 10.0/9.0, 1e-9)
	}
}

func (suite *DataGeneratorTestSuite) TestFlatBars() {
	bars := FlatBars("TEST", 20, 50)
	for _, bar := range bars {
		suite.InDelta(50.0, bar.Close, 1e-9)
		suite.InDelta(50.0, bar.High, 1e-9)
		suite.InDelta(50.0, bar.Low, 1e-9)
	}
}
