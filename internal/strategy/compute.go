package strategy

import (
	"math"

	"github.com/stratbench-lab/stratbench/internal/types"
)

// sma returns the simple moving average of the last period closes.
// The caller guarantees len(bars) >= period.
func sma(bars []types.Bar, period int) float64 {
	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		sum += bar.Close
	}

	return sum / float64(period)
}

// stddev returns the population standard deviation of the last period
// closes around the given mean.
func stddev(bars []types.Bar, period int, mean float64) float64 {
	sum := 0.0
	for _, bar := range bars[len(bars)-period:] {
		diff := bar.Close - mean
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(period))
}

// rsi returns the relative strength index over the last period bars.
// The caller guarantees len(bars) >= period+1.
func rsi(bars []types.Bar, period int) float64 {
	gains := 0.0
	losses := 0.0

	for i := len(bars) - period; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if losses == 0 {
		return 100
	}

	rs := gains / losses

	return 100 - 100/(1+rs)
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
