// Package commission models broker commission charged on each fill.
package commission

import (
	"github.com/shopspring/decimal"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// Model calculates the commission fee in account currency for a fill of
// quantity whole units at the given price.
type Model interface {
	Calculate(quantity int64, price float64) float64
}

// ModelName identifies a commission model in configuration.
type ModelName string

const (
	ModelNameZero       ModelName = "zero"
	ModelNamePercentage ModelName = "percentage"
	ModelNamePerShare   ModelName = "per_share"
)

// AllModelNames lists the recognized configuration values.
var AllModelNames = []any{
	ModelNameZero,
	ModelNamePercentage,
	ModelNamePerShare,
}

// ForConfig builds the model named in configuration. The rate parameter is
// the percentage rate for "percentage" and the per-unit fee for
// "per_share".
func ForConfig(name ModelName, rate float64) (Model, error) {
	switch name {
	case ModelNameZero:
		return NewZero(), nil
	case ModelNamePercentage:
		return NewPercentage(rate), nil
	case ModelNamePerShare:
		return NewPerShare(rate, 1.0), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidCommission, "unknown commission model: %s", name)
	}
}

// Zero charges nothing.
type Zero struct{}

// NewZero creates a zero-commission model.
func NewZero() Model {
	return &Zero{}
}

// Calculate implements Model.
func (z *Zero) Calculate(quantity int64, price float64) float64 {
	return 0
}

// Percentage charges a flat fraction of the notional value of the fill.
type Percentage struct {
	rate float64
}

// NewPercentage creates a percentage-of-notional model (0.001 = 10 bps).
func NewPercentage(rate float64) Model {
	return &Percentage{rate: rate}
}

// Calculate implements Model.
func (p *Percentage) Calculate(quantity int64, price float64) float64 {
	notional := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(price))
	fee, _ := notional.Mul(decimal.NewFromFloat(p.rate)).Float64()

	return fee
}

// PerShare charges a fixed fee per unit with a minimum per fill, the
// interactive-broker style schedule.
type PerShare struct {
	perShare float64
	minimum  float64
}

// NewPerShare creates a per-unit model.
func NewPerShare(perShare, minimum float64) Model {
	return &PerShare{
		perShare: perShare,
		minimum:  minimum,
	}
}

// Calculate implements Model.
func (p *PerShare) Calculate(quantity int64, price float64) float64 {
	fee := p.perShare * float64(quantity)
	if fee < p.minimum {
		return p.minimum
	}

	return fee
}
