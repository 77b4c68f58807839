package datasource

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// InMemory serves bars from memory. Used by tests and by callers that
// generate data instead of loading it.
type InMemory struct {
	bars map[string][]types.Bar
}

// NewInMemory creates an empty in-memory source.
func NewInMemory() *InMemory {
	return &InMemory{bars: make(map[string][]types.Bar)}
}

// Add registers bars for a symbol, replacing any previous data.
func (m *InMemory) Add(symbol string, bars []types.Bar) {
	m.bars[symbol] = append([]types.Bar(nil), bars...)
}

// Load implements DataSource.
func (m *InMemory) Load(symbol string, start, end optional.Option[time.Time]) (*series.PriceSeries, error) {
	stored, ok := m.bars[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars found for %s", symbol)
	}

	var selected []types.Bar
	for _, bar := range stored {
		if start.IsSome() && bar.Time.Before(start.Unwrap()) {
			continue
		}

		if end.IsSome() && bar.Time.After(end.Unwrap()) {
			continue
		}

		selected = append(selected, bar)
	}

	if len(selected) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars for %s in the requested range", symbol)
	}

	return series.New(symbol, selected)
}

// Symbols implements DataSource.
func (m *InMemory) Symbols() ([]string, error) {
	symbols := make([]string, 0, len(m.bars))
	for symbol := range m.bars {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return symbols, nil
}

// Count implements DataSource.
func (m *InMemory) Count(symbol string) (int, error) {
	return len(m.bars[symbol]), nil
}

// Close implements DataSource.
func (m *InMemory) Close() error {
	return nil
}
