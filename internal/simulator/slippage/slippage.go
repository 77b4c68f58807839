// Package slippage models the gap between requested and filled prices.
package slippage

import (
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// Model adjusts a requested price to the filled price. Buys fill at or
// above the requested price, sells at or below it.
type Model interface {
	Fill(requested float64, side types.SignalDirection, quantity int64, barVolume float64) float64
}

// ModelName identifies a slippage model in configuration.
type ModelName string

const (
	ModelNameZero         ModelName = "zero"
	ModelNameFixedBps     ModelName = "fixed_bps"
	ModelNameVolumeImpact ModelName = "volume_impact"
)

// AllModelNames lists the recognized configuration values.
var AllModelNames = []any{
	ModelNameZero,
	ModelNameFixedBps,
	ModelNameVolumeImpact,
}

// ForConfig builds the model named in configuration. The bps parameter is
// the fixed spread for "fixed_bps" and the impact coefficient in basis
// points per 100% participation for "volume_impact".
func ForConfig(name ModelName, bps float64) (Model, error) {
	switch name {
	case ModelNameZero:
		return NewZero(), nil
	case ModelNameFixedBps:
		return NewFixedBps(bps), nil
	case ModelNameVolumeImpact:
		return NewVolumeImpact(bps), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidSlippage, "unknown slippage model: %s", name)
	}
}

// Zero fills at the requested price.
type Zero struct{}

// NewZero creates a no-slippage model.
func NewZero() Model {
	return &Zero{}
}

// Fill implements Model.
func (z *Zero) Fill(requested float64, side types.SignalDirection, quantity int64, barVolume float64) float64 {
	return requested
}

// FixedBps applies a constant adverse spread in basis points.
type FixedBps struct {
	bps float64
}

// NewFixedBps creates a fixed-spread model (5 = 5 basis points).
func NewFixedBps(bps float64) Model {
	return &FixedBps{bps: bps}
}

// Fill implements Model.
func (f *FixedBps) Fill(requested float64, side types.SignalDirection, quantity int64, barVolume float64) float64 {
	return adjust(requested, side, f.bps)
}

// VolumeImpact scales the adverse spread with the order's share of the
// bar's volume: impact = coefficient * (quantity / barVolume) basis points.
type VolumeImpact struct {
	coefficient float64
}

// NewVolumeImpact creates a participation-scaled model.
func NewVolumeImpact(coefficient float64) Model {
	return &VolumeImpact{coefficient: coefficient}
}

// Fill implements Model.
func (v *VolumeImpact) Fill(requested float64, side types.SignalDirection, quantity int64, barVolume float64) float64 {
	if barVolume <= 0 {
		return requested
	}

	participation := float64(quantity) / barVolume

	return adjust(requested, side, v.coefficient*participation)
}

func adjust(price float64, side types.SignalDirection, bps float64) float64 {
	spread := price * bps / 10000

	if side == types.SignalBuy {
		return price + spread
	}

	return price - spread
}
