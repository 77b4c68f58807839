package types

import (
	"fmt"
	"os"

	"github.com/stratbench-lab/stratbench/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Metric names recognized by Metric, the comparator, and the optimizer's
// score_metric option.
const (
	MetricTotalReturn      = "total_return"
	MetricAnnualizedReturn = "annualized_return"
	MetricSharpeRatio      = "sharpe_ratio"
	MetricSortinoRatio     = "sortino_ratio"
	MetricMaxDrawdown      = "max_drawdown"
	MetricWinRate          = "win_rate"
	MetricProfitFactor     = "profit_factor"
	MetricAverageWin       = "average_win"
	MetricAverageLoss      = "average_loss"
	MetricExpectancy       = "expectancy"
	MetricRiskRewardRatio  = "risk_reward_ratio"
	MetricCalmarRatio      = "calmar_ratio"
	MetricRecoveryFactor   = "recovery_factor"
)

// MetricsReport is the fixed set of scalar performance statistics computed
// once from a closed equity curve and trade log. It is plain structured
// data: external layers render or persist it without reaching into
// simulator internals.
//
// Division-by-zero cases resolve to documented sentinels, never an error:
// ratios with a zero denominator are 0, except ProfitFactor which is +Inf
// when there is at least one winning trade and no losing trades.
type MetricsReport struct {
	TotalReturn      float64 `yaml:"total_return" json:"total_return"`
	AnnualizedReturn float64 `yaml:"annualized_return" json:"annualized_return"`
	SharpeRatio      float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio     float64 `yaml:"sortino_ratio" json:"sortino_ratio"`
	// MaxDrawdown is expressed as a negative or zero percentage.
	MaxDrawdown     float64 `yaml:"max_drawdown" json:"max_drawdown"`
	WinRate         float64 `yaml:"win_rate" json:"win_rate"`
	ProfitFactor    float64 `yaml:"profit_factor" json:"profit_factor"`
	AverageWin      float64 `yaml:"average_win" json:"average_win"`
	AverageLoss     float64 `yaml:"average_loss" json:"average_loss"`
	Expectancy      float64 `yaml:"expectancy" json:"expectancy"`
	RiskRewardRatio float64 `yaml:"risk_reward_ratio" json:"risk_reward_ratio"`
	CalmarRatio     float64 `yaml:"calmar_ratio" json:"calmar_ratio"`
	RecoveryFactor  float64 `yaml:"recovery_factor" json:"recovery_factor"`

	// Trade accounting alongside the ratios.
	TotalTrades     int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades   int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades    int     `yaml:"losing_trades" json:"losing_trades"`
	OpenTrades      int     `yaml:"open_trades" json:"open_trades"`
	TotalCommission float64 `yaml:"total_commission" json:"total_commission"`
	TotalSlippage   float64 `yaml:"total_slippage" json:"total_slippage"`
	FinalEquity     float64 `yaml:"final_equity" json:"final_equity"`
}

// MetricNames returns the recognized metric names in a stable order.
func MetricNames() []string {
	return []string{
		MetricTotalReturn,
		MetricAnnualizedReturn,
		MetricSharpeRatio,
		MetricSortinoRatio,
		MetricMaxDrawdown,
		MetricWinRate,
		MetricProfitFactor,
		MetricAverageWin,
		MetricAverageLoss,
		MetricExpectancy,
		MetricRiskRewardRatio,
		MetricCalmarRatio,
		MetricRecoveryFactor,
	}
}

// AsMap returns the named scalar statistics as a plain map for external
// consumers.
func (r MetricsReport) AsMap() map[string]float64 {
	return map[string]float64{
		MetricTotalReturn:      r.TotalReturn,
		MetricAnnualizedReturn: r.AnnualizedReturn,
		MetricSharpeRatio:      r.SharpeRatio,
		MetricSortinoRatio:     r.SortinoRatio,
		MetricMaxDrawdown:      r.MaxDrawdown,
		MetricWinRate:          r.WinRate,
		MetricProfitFactor:     r.ProfitFactor,
		MetricAverageWin:       r.AverageWin,
		MetricAverageLoss:      r.AverageLoss,
		MetricExpectancy:       r.Expectancy,
		MetricRiskRewardRatio:  r.RiskRewardRatio,
		MetricCalmarRatio:      r.CalmarRatio,
		MetricRecoveryFactor:   r.RecoveryFactor,
	}
}

// Metric looks up a statistic by its recognized name.
func (r MetricsReport) Metric(name string) (float64, error) {
	value, ok := r.AsMap()[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeUnknownMetric, "unknown metric: %s", name)
	}

	return value, nil
}

// WriteMetricsReport writes a report to a YAML file.
func WriteMetricsReport(path string, report MetricsReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics report to file: %w", err)
	}

	return nil
}
