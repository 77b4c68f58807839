package types

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) TestAsMapCoversAllMetricNames() {
	report := MetricsReport{}
	m := report.AsMap()

	for _, name := range MetricNames() {
		_, ok := m[name]
		suite.True(ok, "metric %s missing from AsMap", name)
	}

	suite.Len(m, len(MetricNames()))
}

func (suite *ReportTestSuite) TestMetricLookup() {
	report := MetricsReport{
		SharpeRatio: 1.5,
		MaxDrawdown: -0.25,
	}

	value, err := report.Metric(MetricSharpeRatio)
	suite.NoError(err)
	suite.InDelta(1.5, value, 1e-9)

	value, err = report.Metric(MetricMaxDrawdown)
	suite.NoError(err)
	suite.InDelta(-0.25, value, 1e-9)
}

func (suite *ReportTestSuite) TestMetricUnknownName() {
	report := MetricsReport{}
	_, err := report.Metric("alpha_decay")
	suite.Error(err)
}

func (suite *ReportTestSuite) TestProfitFactorSentinelSurvivesMap() {
	report := MetricsReport{ProfitFactor: math.Inf(1)}
	value, err := report.Metric(MetricProfitFactor)
	suite.NoError(err)
	suite.True(math.IsInf(value, 1))
}

func (suite *ReportTestSuite) TestWriteMetricsReport() {
	report := MetricsReport{
		TotalReturn: 0.12,
		SharpeRatio: 1.1,
		TotalTrades: 7,
		FinalEquity: 112000,
	}

	path := filepath.Join(suite.T().TempDir(), "report.yaml")
	suite.NoError(WriteMetricsReport(path, report))

	data, err := os.ReadFile(path)
	suite.NoError(err)

	var loaded MetricsReport
	suite.NoError(yaml.Unmarshal(data, &loaded))
	suite.InDelta(report.TotalReturn, loaded.TotalReturn, 1e-9)
	suite.Equal(report.TotalTrades, loaded.TotalTrades)
}
