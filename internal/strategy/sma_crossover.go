package strategy

import (
	"fmt"

	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// SMACrossover trades moving-average crossovers: BUY when the fast average
// crosses above the slow one, SELL when it crosses back below. Confidence
// scales with the normalized gap between the two averages.
type SMACrossover struct {
	fastPeriod int
	slowPeriod int
}

// NewSMACrossover creates the strategy, validating that 0 < fast < slow.
func NewSMACrossover(fastPeriod, slowPeriod int) (*SMACrossover, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError,
			"periods must be positive, got fast=%d slow=%d", fastPeriod, slowPeriod)
	}

	if fastPeriod >= slowPeriod {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError,
			"fast period (%d) must be shorter than slow period (%d)", fastPeriod, slowPeriod)
	}

	return &SMACrossover{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}, nil
}

// SMACrossoverFactory builds the strategy from fast_period and slow_period
// parameters.
func SMACrossoverFactory(params ParameterSet) (Strategy, error) {
	fast, err := params.Int("fast_period")
	if err != nil {
		return nil, err
	}

	slow, err := params.Int("slow_period")
	if err != nil {
		return nil, err
	}

	return NewSMACrossover(fast, slow)
}

// Name implements Strategy.
func (s *SMACrossover) Name() string {
	return fmt.Sprintf("sma_crossover(%d,%d)", s.fastPeriod, s.slowPeriod)
}

// WarmupPeriod implements Strategy. One extra bar is needed to observe the
// crossing itself.
func (s *SMACrossover) WarmupPeriod() int {
	return s.slowPeriod + 1
}

// Evaluate implements Strategy.
func (s *SMACrossover) Evaluate(history []types.Bar) (types.Signal, error) {
	last := history[len(history)-1]
	if len(history) < s.WarmupPeriod() {
		return types.Hold(last.Time, "warming up"), nil
	}

	fastNow := sma(history, s.fastPeriod)
	slowNow := sma(history, s.slowPeriod)

	prev := history[:len(history)-1]
	fastPrev := sma(prev, s.fastPeriod)
	slowPrev := sma(prev, s.slowPeriod)

	confidence := clamp(absGap(fastNow, slowNow)*50, 0.1, 1.0)

	switch {
	case fastPrev <= slowPrev && fastNow > slowNow:
		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalBuy,
			Confidence: confidence,
			Reason:     fmt.Sprintf("fast SMA(%d) crossed above slow SMA(%d)", s.fastPeriod, s.slowPeriod),
		}, nil
	case fastPrev >= slowPrev && fastNow < slowNow:
		return types.Signal{
			Time:       last.Time,
			Direction:  types.SignalSell,
			Confidence: confidence,
			Reason:     fmt.Sprintf("fast SMA(%d) crossed below slow SMA(%d)", s.fastPeriod, s.slowPeriod),
		}, nil
	default:
		return types.Hold(last.Time, "no crossover"), nil
	}
}

// absGap returns |fast-slow| normalized by the slow average.
func absGap(fast, slow float64) float64 {
	if slow == 0 {
		return 0
	}

	gap := (fast - slow) / slow
	if gap < 0 {
		return -gap
	}

	return gap
}
