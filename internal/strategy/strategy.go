// Package strategy defines the pluggable capability that maps a price
// history to a directional signal, plus reference implementations for the
// common indicator families.
package strategy

import (
	"math"
	"sort"

	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// Strategy is the capability the simulator depends on. Evaluate is called
// once per bar with the history prefix up to and including that bar; it
// must not assume anything about bars after the end of the slice.
type Strategy interface {
	// Name returns the human-readable strategy name.
	Name() string
	// WarmupPeriod returns the minimum number of bars the strategy needs
	// before it can produce a non-HOLD signal.
	WarmupPeriod() int
	// Evaluate produces exactly one signal for the last bar of history.
	Evaluate(history []types.Bar) (types.Signal, error)
}

// ParameterSet is one concrete assignment of tunable parameter values.
type ParameterSet map[string]float64

// Clone returns a copy of the parameter set.
func (p ParameterSet) Clone() ParameterSet {
	clone := make(ParameterSet, len(p))
	for k, v := range p {
		clone[k] = v
	}

	return clone
}

// Float returns the named parameter value.
func (p ParameterSet) Float(name string) (float64, error) {
	value, ok := p[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "missing parameter: %s", name)
	}

	return value, nil
}

// Int returns the named parameter value as an integer. Non-integral values
// are rejected so a grid typo cannot silently truncate.
func (p ParameterSet) Int(name string) (int, error) {
	value, err := p.Float(name)
	if err != nil {
		return 0, err
	}

	if value != math.Trunc(value) {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "parameter %s must be an integer, got %v", name, value)
	}

	return int(value), nil
}

// Names returns the parameter names in lexicographic order.
func (p ParameterSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Factory instantiates a strategy from a parameter set. Factories must
// fail fast on invalid parameters.
type Factory func(params ParameterSet) (Strategy, error)

// Registered strategy kinds.
const (
	KindSMACrossover      = "sma_crossover"
	KindRSIReversion      = "rsi_reversion"
	KindBollingerBreakout = "bollinger_breakout"
)

// AllKinds lists the registered strategy kinds.
var AllKinds = []string{KindSMACrossover, KindRSIReversion, KindBollingerBreakout}

// FactoryFor looks up a factory for a registered strategy kind.
func FactoryFor(kind string) (Factory, error) {
	switch kind {
	case KindSMACrossover:
		return SMACrossoverFactory, nil
	case KindRSIReversion:
		return RSIReversionFactory, nil
	case KindBollingerBreakout:
		return BollingerBreakoutFactory, nil
	default:
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "unknown strategy kind: %s", kind)
	}
}
