package strategy

import (
	"fmt"

	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// BollingerBreakout trades band breakouts: BUY when the close breaks above
// the upper band, SELL when it falls back under the middle band.
type BollingerBreakout struct {
	period     int
	multiplier float64
}

// NewBollingerBreakout creates the strategy.
func NewBollingerBreakout(period int, multiplier float64) (*BollingerBreakout, error) {
	if period <= 1 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "band period must be > 1, got %d", period)
	}

	if multiplier <= 0 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "band multiplier must be positive, got %v", multiplier)
	}

	return &BollingerBreakout{
		period:     period,
		multiplier: multiplier,
	}, nil
}

// BollingerBreakoutFactory builds the strategy from period and multiplier
// parameters.
func BollingerBreakoutFactory(params ParameterSet) (Strategy, error) {
	period, err := params.Int("period")
	if err != nil {
		return nil, err
	}

	multiplier, err := params.Float("multiplier")
	if err != nil {
		return nil, err
	}

	return NewBollingerBreakout(period, multiplier)
}

// Name implements Strategy.
func (b *BollingerBreakout) Name() string {
	return fmt.Sprintf("bollinger_breakout(%d,%g)", b.period, b.multiplier)
}

// WarmupPeriod implements Strategy.
func (b *BollingerBreakout) WarmupPeriod() int {
	return b.period
}

// Evaluate implements Strategy.
func (b *BollingerBreakout) Evaluate(history []types.Bar) (types.Signal, error) {
	last := history[len(history)-1]
	if len(history) < b.WarmupPeriod() {
		return types.Hold(last.Time, "warming up"), nil
	}

	middle := sma(history, b.period)
	band := stddev(history, b.period, middle) * b.multiplier
	upper := middle + band

	switch {
	case last.Close > upper:
		confidence := 0.5
		if band > 0 {
			confidence = clamp((last.Close-upper)/band+0.5, 0.5, 1.0)
		}

		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalBuy,
			Confidence: confidence,
			Reason:     fmt.Sprintf("close %.4f above upper band %.4f", last.Close, upper),
		}, nil
	case last.Close < middle:
		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalSell,
			Confidence: 0.6,
			Reason:     fmt.Sprintf("close %.4f fell under middle band %.4f", last.Close, middle),
		}, nil
	default:
		return types.Hold(last.Time, "inside bands"), nil
	}
}
