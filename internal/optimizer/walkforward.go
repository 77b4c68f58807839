package optimizer

import (
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// WalkForward rolls a contiguous training window followed by a
// non-overlapping testing window across the series.
type WalkForward struct {
	TrainBars int `yaml:"train_bars" json:"train_bars" jsonschema:"title=Training Window Bars,minimum=1"`
	TestBars  int `yaml:"test_bars" json:"test_bars" jsonschema:"title=Testing Window Bars,minimum=1"`
	StepBars  int `yaml:"step_bars" json:"step_bars" jsonschema:"title=Roll Step Bars,minimum=1"`
}

// Split is one train/test partition. Both windows are views over the same
// backing series; they share no bars.
type Split struct {
	Index int
	Train *series.PriceSeries
	Test  *series.PriceSeries
}

// Validate checks the window geometry.
func (w WalkForward) Validate() error {
	if w.TrainBars <= 0 || w.TestBars <= 0 || w.StepBars <= 0 {
		return errors.Newf(errors.ErrCodeInvalidWalkForwardWindow,
			"walk-forward windows must be positive, got train=%d test=%d step=%d",
			w.TrainBars, w.TestBars, w.StepBars)
	}

	return nil
}

// Splits partitions the series. minBars is the smallest window a strategy
// can produce signals on (its warmup); a window geometry that cannot seat
// it is a configuration error, as is a series too short for even one
// split.
func (w WalkForward) Splits(priceSeries *series.PriceSeries, minBars int) ([]Split, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	if w.TrainBars < minBars || w.TestBars < minBars {
		return nil, errors.Newf(errors.ErrCodeInvalidWalkForwardWindow,
			"windows train=%d test=%d are shorter than the %d bars the strategy needs",
			w.TrainBars, w.TestBars, minBars)
	}

	if priceSeries == nil || priceSeries.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptySeries, "price series is empty")
	}

	var splits []Split
	for start := 0; start+w.TrainBars+w.TestBars <= priceSeries.Len(); start += w.StepBars {
		train, err := priceSeries.Window(start, start+w.TrainBars)
		if err != nil {
			return nil, err
		}

		test, err := priceSeries.Window(start+w.TrainBars, start+w.TrainBars+w.TestBars)
		if err != nil {
			return nil, err
		}

		splits = append(splits, Split{
			Index: len(splits),
			Train: train,
			Test:  test,
		})
	}

	if len(splits) == 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidWalkForwardWindow,
			"series of %d bars is too short for train=%d test=%d",
			priceSeries.Len(), w.TrainBars, w.TestBars)
	}

	return splits, nil
}
