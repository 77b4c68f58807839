package types

import "time"

// EquityPoint is one mark-to-market snapshot of the account, taken after
// each processed bar using that bar's close price. TotalEquity is always
// Cash + PositionValue at the same bar; no stale prices.
type EquityPoint struct {
	Time          time.Time `csv:"time" yaml:"time" json:"time"`
	Cash          float64   `csv:"cash" yaml:"cash" json:"cash"`
	PositionValue float64   `csv:"position_value" yaml:"position_value" json:"position_value"`
	TotalEquity   float64   `csv:"total_equity" yaml:"total_equity" json:"total_equity"`
}

// EquityCurve is the ordered equity trajectory of a simulation: exactly one
// point per bar processed, monotonic in time.
type EquityCurve []EquityPoint

// Initial returns the total equity at the first point, or 0 for an empty curve.
func (c EquityCurve) Initial() float64 {
	if len(c) == 0 {
		return 0
	}

	return c[0].TotalEquity
}

// Final returns the total equity at the last point, or 0 for an empty curve.
func (c EquityCurve) Final() float64 {
	if len(c) == 0 {
		return 0
	}

	return c[len(c)-1].TotalEquity
}

// Returns computes the simple percentage change between consecutive equity
// points. Periods starting from zero equity contribute a zero return.
func (c EquityCurve) Returns() []float64 {
	if len(c) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(c)-1)

	for i := 1; i < len(c); i++ {
		prev := c[i-1].TotalEquity
		if prev == 0 {
			returns = append(returns, 0)

			continue
		}

		returns = append(returns, c[i].TotalEquity/prev-1)
	}

	return returns
}
