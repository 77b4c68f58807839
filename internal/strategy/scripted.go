package strategy

import "github.com/stratbench-lab/stratbench/internal/types"

// Scripted replays a fixed schedule of directions keyed by bar index. It
// exists for deterministic tests: the signal for bar i depends only on i,
// never on prices.
type Scripted struct {
	name       string
	directions map[int]types.SignalDirection
	confidence float64
}

// NewScripted creates a scripted strategy. Bars without an entry in the
// schedule produce HOLD.
func NewScripted(name string, directions map[int]types.SignalDirection, confidence float64) *Scripted {
	return &Scripted{
		name:       name,
		directions: directions,
		confidence: confidence,
	}
}

// Name implements Strategy.
func (s *Scripted) Name() string {
	return s.name
}

// WarmupPeriod implements Strategy.
func (s *Scripted) WarmupPeriod() int {
	return 0
}

// Evaluate implements Strategy.
func (s *Scripted) Evaluate(history []types.Bar) (types.Signal, error) {
	last := history[len(history)-1]

	direction, ok := s.directions[len(history)-1]
	if !ok {
		return types.Hold(last.Time, "not scheduled"), nil
	}

	return types.Signal{
		Time:       last.Time,
		Direction:  direction,
		Confidence: s.confidence,
		Reason:     "scripted",
	}, nil
}
