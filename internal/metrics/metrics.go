// Package metrics computes the fixed set of performance statistics from a
// closed equity curve and trade log.
//
// Compute is a pure function: deterministic, no side effects, and every
// division-by-zero case resolves to a documented sentinel instead of an
// error. Callers can therefore feed it the output of any simulator run,
// including degenerate ones (no trades, flat prices), and always get a
// well-formed report back.
package metrics

import (
	"math"

	"github.com/stratbench-lab/stratbench/internal/types"
)

// Compute derives a MetricsReport from an equity curve and its trade log.
// riskFreeRate is annual; periodsPerYear converts per-bar figures to
// annualized ones (e.g., 252 for daily bars).
//
// Sentinels: sharpe and sortino are 0 when their deviation denominator is
// 0; profit factor is +Inf with at least one win and no losses, 0 with no
// closed trades; calmar and recovery are 0 when max drawdown is 0.
func Compute(curve types.EquityCurve, trades []types.Trade, riskFreeRate, periodsPerYear float64) types.MetricsReport {
	report := types.MetricsReport{}
	if len(curve) == 0 {
		return report
	}

	initial := curve.Initial()
	final := curve.Final()
	report.FinalEquity = final

	if initial != 0 {
		report.TotalReturn = final/initial - 1
	}

	periods := float64(len(curve) - 1)
	if periods > 0 && periodsPerYear > 0 {
		report.AnnualizedReturn = math.Pow(1+report.TotalReturn, periodsPerYear/periods) - 1
	}

	returns := curve.Returns()
	report.SharpeRatio = sharpe(returns, riskFreeRate, periodsPerYear)
	report.SortinoRatio = sortino(returns, riskFreeRate, periodsPerYear)
	report.MaxDrawdown = maxDrawdown(curve)

	fillTradeStats(&report, trades)

	drawdown := math.Abs(report.MaxDrawdown)
	if drawdown != 0 {
		report.CalmarRatio = report.AnnualizedReturn / drawdown
		report.RecoveryFactor = report.TotalReturn / drawdown
	}

	return report
}

// sharpe is the annualized ratio of mean excess return to the sample
// standard deviation of per-period returns.
func sharpe(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}

	perPeriodRate := riskFreeRate / periodsPerYear

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - perPeriodRate
	}

	deviation := sampleStdev(returns)
	if deviation == 0 {
		return 0
	}

	return mean(excess) / deviation * math.Sqrt(periodsPerYear)
}

// sortino replaces the denominator with the deviation of negative excess
// returns only. No losing periods means no downside to measure: 0.
func sortino(returns []float64, riskFreeRate, periodsPerYear float64) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}

	perPeriodRate := riskFreeRate / periodsPerYear

	excess := make([]float64, len(returns))
	var downside []float64
	for i, r := range returns {
		excess[i] = r - perPeriodRate
		if excess[i] < 0 {
			downside = append(downside, excess[i])
		}
	}

	deviation := sampleStdev(downside)
	if deviation == 0 {
		return 0
	}

	return mean(excess) / deviation * math.Sqrt(periodsPerYear)
}

// maxDrawdown is the largest peak-to-trough decline over the running peak,
// reported as a negative or zero fraction.
func maxDrawdown(curve types.EquityCurve) float64 {
	peak := curve.Initial()
	worst := 0.0

	for _, point := range curve {
		if point.TotalEquity > peak {
			peak = point.TotalEquity
		}

		if peak > 0 {
			drawdown := (peak - point.TotalEquity) / peak
			if drawdown > worst {
				worst = drawdown
			}
		}
	}

	return -worst
}

func fillTradeStats(report *types.MetricsReport, trades []types.Trade) {
	var (
		closed    int
		grossWin  float64
		grossLoss float64
	)

	report.TotalTrades = len(trades)

	for i := range trades {
		trade := &trades[i]
		report.TotalCommission += trade.Commission
		report.TotalSlippage += trade.Slippage

		if !trade.Closed() {
			report.OpenTrades++
			continue
		}

		closed++
		switch {
		case trade.RealizedPnL > 0:
			report.WinningTrades++
			grossWin += trade.RealizedPnL
		case trade.RealizedPnL < 0:
			report.LosingTrades++
			grossLoss += -trade.RealizedPnL
		}
	}

	if closed > 0 {
		report.WinRate = float64(report.WinningTrades) / float64(closed)
	}

	switch {
	case closed == 0 || (grossLoss == 0 && report.WinningTrades == 0):
		report.ProfitFactor = 0
	case grossLoss == 0:
		report.ProfitFactor = math.Inf(1)
	default:
		report.ProfitFactor = grossWin / grossLoss
	}

	if report.WinningTrades > 0 {
		report.AverageWin = grossWin / float64(report.WinningTrades)
	}

	if report.LosingTrades > 0 {
		report.AverageLoss = -grossLoss / float64(report.LosingTrades)
	}

	report.Expectancy = report.WinRate*report.AverageWin + (1-report.WinRate)*report.AverageLoss

	if report.AverageLoss != 0 {
		report.RiskRewardRatio = report.AverageWin / math.Abs(report.AverageLoss)
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// sampleStdev is the n-1 standard deviation; it needs at least two
// observations, otherwise 0.
func sampleStdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - m
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(values)-1))
}
