package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/mocks"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DataSourceTestSuite struct {
	suite.Suite
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

// writeCSV materializes bars for one or more symbols into a CSV file.
func (suite *DataSourceTestSuite) writeCSV(symbols ...string) string {
	var sb strings.Builder
	sb.WriteString("time,symbol,open,high,low,close,volume\n")

	for _, symbol := range symbols {
		for _, bar := range mocks.LinearBars(symbol, 10, 100, 110) {
			sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.4f,%.4f,%.4f,%.0f\n",
				bar.Time.Format(time.RFC3339), symbol,
				bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
		}
	}

	path := filepath.Join(suite.T().TempDir(), "bars.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(sb.String()), 0644))

	return path
}

func (suite *DataSourceTestSuite) openDuckDB(symbols ...string) *DuckDB {
	source, err := NewDuckDB("", nil)
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { _ = source.Close() })

	suite.Require().NoError(source.InitializeCSV(suite.writeCSV(symbols...)))

	return source
}

func (suite *DataSourceTestSuite) TestDuckDBLoad() {
	source := suite.openDuckDB("AAPL", "SPY")

	ps, err := source.Load("AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	suite.Equal("AAPL", ps.Symbol())
	suite.Equal(10, ps.Len())
	suite.InDelta(100.0, ps.Bar(0).Close, 1e-6)
	suite.InDelta(110.0, ps.Bar(9).Close, 1e-6)
}

func (suite *DataSourceTestSuite) TestDuckDBLoadRange() {
	source := suite.openDuckDB("AAPL")

	full, err := source.Load("AAPL", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)

	start := full.Bar(2).Time
	end := full.Bar(6).Time

	window, err := source.Load("AAPL", optional.Some(start), optional.Some(end))
	suite.Require().NoError(err)

	suite.Equal(5, window.Len())
	suite.Equal(start, window.Start())
	suite.Equal(end, window.End())
}

func (suite *DataSourceTestSuite) TestDuckDBSymbolsAndCount() {
	source := suite.openDuckDB("SPY", "AAPL")

	symbols, err := source.Symbols()
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "SPY"}, symbols)

	count, err := source.Count("SPY")
	suite.Require().NoError(err)
	suite.Equal(10, count)
}

func (suite *DataSourceTestSuite) TestDuckDBUnknownSymbol() {
	source := suite.openDuckDB("AAPL")

	_, err := source.Load("TSLA", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DataSourceTestSuite) TestDuckDBInitializeFileExtension() {
	source, err := NewDuckDB("", nil)
	suite.Require().NoError(err)
	defer source.Close()

	err = source.InitializeFile("bars.json")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataParseFailed))
}

func (suite *DataSourceTestSuite) TestInMemoryLoad() {
	source := NewInMemory()
	source.Add("TEST", mocks.LinearBars("TEST", 20, 100, 120))

	ps, err := source.Load("TEST", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(20, ps.Len())

	count, err := source.Count("TEST")
	suite.Require().NoError(err)
	suite.Equal(20, count)
}

func (suite *DataSourceTestSuite) TestInMemoryRange() {
	bars := mocks.LinearBars("TEST", 10, 100, 110)
	source := NewInMemory()
	source.Add("TEST", bars)

	ps, err := source.Load("TEST", optional.Some(bars[3].Time), optional.Some(bars[7].Time))
	suite.Require().NoError(err)
	suite.Equal(5, ps.Len())

	_, err = source.Load("TEST", optional.Some(bars[9].Time.Add(time.Hour)), optional.None[time.Time]())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *DataSourceTestSuite) TestInMemoryUnknownSymbol() {
	source := NewInMemory()

	_, err := source.Load("TEST", optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Error(err)
	suite.True(errors.IsDataError(err))
}

func (suite *DataSourceTestSuite) TestImplementationsSatisfyInterface() {
	var _ DataSource = (*DuckDB)(nil)
	var _ DataSource = (*InMemory)(nil)
}
