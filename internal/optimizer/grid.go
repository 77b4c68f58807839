// Package optimizer sweeps a strategy's parameter grid with walk-forward
// validation and selects the candidate that generalizes best out of
// sample.
package optimizer

import (
	"sort"

	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// ParameterGrid maps a parameter name to its ordered candidate values. The
// candidate space is the Cartesian product of all value lists.
type ParameterGrid map[string][]float64

// Validate rejects an empty grid or a parameter with no candidate values.
func (g ParameterGrid) Validate() error {
	if len(g) == 0 {
		return errors.New(errors.ErrCodeEmptyParameterGrid, "parameter grid is empty")
	}

	for name, values := range g {
		if len(values) == 0 {
			return errors.Newf(errors.ErrCodeEmptyParameterGrid,
				"parameter %s has no candidate values", name)
		}
	}

	return nil
}

// Size is the number of candidates in the Cartesian product.
func (g ParameterGrid) Size() int {
	if len(g) == 0 {
		return 0
	}

	size := 1
	for _, values := range g {
		size *= len(values)
	}

	return size
}

// Combinations enumerates the full Cartesian product in a deterministic
// order: lexicographic over sorted parameter names, then over each
// parameter's declared candidate order. The last name varies fastest, so
// the sequence reads like an odometer. Tie-breaks during selection rely on
// this order being reproducible.
func (g ParameterGrid) Combinations() ([]strategy.ParameterSet, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]string, 0, len(g))
	for name := range g {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	combos := make([]strategy.ParameterSet, 0, g.Size())
	indexes := make([]int, len(sorted))

	for {
		params := make(strategy.ParameterSet, len(sorted))
		for i, name := range sorted {
			params[name] = g[name][indexes[i]]
		}
		combos = append(combos, params)

		// advance the odometer, rightmost digit first
		pos := len(sorted) - 1
		for pos >= 0 {
			indexes[pos]++
			if indexes[pos] < len(g[sorted[pos]]) {
				break
			}

			indexes[pos] = 0
			pos--
		}

		if pos < 0 {
			return combos, nil
		}
	}
}
