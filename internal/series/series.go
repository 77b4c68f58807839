// Package series provides the immutable ordered bar history consumed by
// the simulator, comparator, and optimizer.
package series

import (
	"time"

	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// PriceSeries is an immutable, time-ordered history of bars for a single
// symbol. Construction validates ordering once; every window derived from
// a valid series shares its backing array and needs no re-validation.
type PriceSeries struct {
	symbol string
	bars   []types.Bar
}

// New validates and constructs a PriceSeries. The bars are copied so later
// mutation of the caller's slice cannot corrupt the series. Returns a data
// error if the series is empty, out of order, or contains duplicate
// timestamps.
func New(symbol string, bars []types.Bar) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptySeries, "price series for %s is empty", symbol)
	}

	for i := 1; i < len(bars); i++ {
		if bars[i].Time.Equal(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeDuplicateTimestamp,
				"duplicate timestamp %s at bar %d", bars[i].Time, i)
		}

		if bars[i].Time.Before(bars[i-1].Time) {
			return nil, errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"timestamp %s at bar %d precedes previous bar %s", bars[i].Time, i, bars[i-1].Time)
		}
	}

	copied := make([]types.Bar, len(bars))
	copy(copied, bars)

	return &PriceSeries{
		symbol: symbol,
		bars:   copied,
	}, nil
}

// Symbol returns the symbol this series belongs to.
func (s *PriceSeries) Symbol() string {
	return s.symbol
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i.
func (s *PriceSeries) Bar(i int) types.Bar {
	return s.bars[i]
}

// Bars returns the underlying bars. Callers must treat the slice as
// read-only.
func (s *PriceSeries) Bars() []types.Bar {
	return s.bars
}

// Prefix returns the history up to and including bar n (the view a
// strategy is allowed to see when evaluating bar n). Callers must treat
// the slice as read-only.
func (s *PriceSeries) Prefix(n int) []types.Bar {
	return s.bars[:n+1]
}

// Start returns the timestamp of the first bar.
func (s *PriceSeries) Start() time.Time {
	return s.bars[0].Time
}

// End returns the timestamp of the last bar.
func (s *PriceSeries) End() time.Time {
	return s.bars[len(s.bars)-1].Time
}

// Window returns the half-open bar range [i, j) as a series view sharing
// the backing array.
func (s *PriceSeries) Window(i, j int) (*PriceSeries, error) {
	if i < 0 || j > len(s.bars) || i >= j {
		return nil, errors.Newf(errors.ErrCodeInvalidWalkForwardWindow,
			"invalid window [%d, %d) over %d bars", i, j, len(s.bars))
	}

	return &PriceSeries{
		symbol: s.symbol,
		bars:   s.bars[i:j],
	}, nil
}
