// Package datasource loads ordered bar sequences from external storage
// into immutable price series.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/stratbench-lab/stratbench/internal/series"
)

// DataSource supplies the ordered bar sequence for a symbol and date
// range. Implementations validate the ordering through series.New, so a
// loaded series is always monotonic and duplicate-free.
type DataSource interface {
	// Load reads the bars for symbol between start and end inclusive;
	// None means unbounded on that side.
	Load(symbol string, start, end optional.Option[time.Time]) (*series.PriceSeries, error)
	// Symbols lists the distinct symbols available.
	Symbols() ([]string, error)
	// Count returns the number of bars stored for symbol.
	Count(symbol string) (int, error)
	// Close releases any resources held by the source.
	Close() error
}
