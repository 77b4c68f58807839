package simulator

import (
	"math"

	"github.com/stratbench-lab/stratbench/internal/simulator/commission"
)

// PositionSizer decides how many whole units to buy given the cash
// available after the reserve floor, the total account equity, and the
// expected fill price.
type PositionSizer interface {
	Size(availableCash, equity, price float64, fee commission.Model) int64
}

// FractionalSizer buys up to maxFraction of current equity, constrained to
// the whole units affordable from available cash after commission.
type FractionalSizer struct {
	maxFraction float64
}

// NewFractionalSizer creates the default sizer.
func NewFractionalSizer(maxFraction float64) *FractionalSizer {
	return &FractionalSizer{maxFraction: maxFraction}
}

// Size implements PositionSizer.
func (s *FractionalSizer) Size(availableCash, equity, price float64, fee commission.Model) int64 {
	budget := math.Min(availableCash, equity*s.maxFraction)

	return maxAffordableQuantity(budget, price, fee)
}

// maxAffordableQuantity calculates the largest whole-unit quantity whose
// notional plus commission fits in the budget. Starts from the rough
// estimate and iteratively refines for the fee, converging within a few
// rounds.
func maxAffordableQuantity(budget, price float64, fee commission.Model) int64 {
	if price <= 0 || budget <= 0 {
		return 0
	}

	maxQty := budget / price

	for i := 0; i < 10; i++ {
		qty := int64(math.Floor(maxQty))
		if qty <= 0 {
			return 0
		}

		totalCost := float64(qty)*price + fee.Calculate(qty, price)
		if totalCost <= budget {
			break
		}

		maxQty = maxQty * (budget / totalCost)
	}

	qty := int64(math.Floor(maxQty))
	if qty < 0 {
		return 0
	}

	// The proportional refinement can land one unit high when the fee has
	// a minimum charge.
	for qty > 0 && float64(qty)*price+fee.Calculate(qty, price) > budget {
		qty--
	}

	return qty
}
