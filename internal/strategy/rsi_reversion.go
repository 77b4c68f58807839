package strategy

import (
	"fmt"

	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// RSIReversion trades oscillator extremes: BUY when RSI drops below the
// oversold level, SELL when it rises above the overbought level.
type RSIReversion struct {
	period     int
	oversold   float64
	overbought float64
}

// NewRSIReversion creates the strategy, validating the level ordering.
func NewRSIReversion(period int, oversold, overbought float64) (*RSIReversion, error) {
	if period <= 1 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "RSI period must be > 1, got %d", period)
	}

	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError,
			"levels must satisfy 0 <= oversold < overbought <= 100, got %v/%v", oversold, overbought)
	}

	return &RSIReversion{
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

// RSIReversionFactory builds the strategy from period, oversold, and
// overbought parameters.
func RSIReversionFactory(params ParameterSet) (Strategy, error) {
	period, err := params.Int("period")
	if err != nil {
		return nil, err
	}

	oversold, err := params.Float("oversold")
	if err != nil {
		return nil, err
	}

	overbought, err := params.Float("overbought")
	if err != nil {
		return nil, err
	}

	return NewRSIReversion(period, oversold, overbought)
}

// Name implements Strategy.
func (r *RSIReversion) Name() string {
	return fmt.Sprintf("rsi_reversion(%d,%g,%g)", r.period, r.oversold, r.overbought)
}

// WarmupPeriod implements Strategy. RSI needs period+1 bars for the first
// period price changes.
func (r *RSIReversion) WarmupPeriod() int {
	return r.period + 1
}

// Evaluate implements Strategy.
func (r *RSIReversion) Evaluate(history []types.Bar) (types.Signal, error) {
	last := history[len(history)-1]
	if len(history) < r.WarmupPeriod() {
		return types.Hold(last.Time, "warming up"), nil
	}

	value := rsi(history, r.period)

	switch {
	case value <= r.oversold:
		// Deeper oversold readings carry more conviction
		confidence := clamp((r.oversold-value)/r.oversold+0.5, 0.5, 1.0)

		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalBuy,
			Confidence: confidence,
			Reason:     fmt.Sprintf("RSI(%d)=%.1f below oversold level %.1f", r.period, value, r.oversold),
		}, nil
	case value >= r.overbought:
		confidence := clamp((value-r.overbought)/(100-r.overbought)+0.5, 0.5, 1.0)

		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalSell,
			Confidence: confidence,
			Reason:     fmt.Sprintf("RSI(%d)=%.1f above overbought level %.1f", r.period, value, r.overbought),
		}, nil
	default:
		return types.Hold(last.Time, "RSI in neutral zone"), nil
	}
}
