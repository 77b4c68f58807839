package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stratbench-lab/stratbench/pkg/errors"
)

// SignalDirection is the directional call a strategy makes on a bar.
type SignalDirection string

const (
	// SignalBuy tells the simulator to open a long position.
	SignalBuy SignalDirection = "BUY"
	// SignalSell tells the simulator to close the open position.
	SignalSell SignalDirection = "SELL"
	// SignalHold tells the simulator to take no action.
	SignalHold SignalDirection = "HOLD"
)

// Signal is one strategy decision for one bar. A strategy produces exactly
// one Signal per evaluated bar, using only the history prefix up to and
// including that bar.
type Signal struct {
	// Time is the time of the bar the signal was produced for.
	Time time.Time `yaml:"time" json:"time" csv:"time"`
	// Direction is the directional call.
	Direction SignalDirection `yaml:"direction" json:"direction" csv:"direction" validate:"required,oneof=BUY SELL HOLD"`
	// Confidence is the strategy's conviction in [0, 1]. The simulator only
	// acts on BUY signals at or above its configured minimum.
	Confidence float64 `yaml:"confidence" json:"confidence" csv:"confidence" validate:"gte=0,lte=1"`
	// Reason is an opaque rationale string carried through to the trade log.
	Reason string `yaml:"reason" json:"reason" csv:"reason"`
}

// Validate validates the Signal struct.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSignal, "invalid signal", err)
	}

	return nil
}

// Hold returns a HOLD signal for the given bar time.
func Hold(t time.Time, reason string) Signal {
	return Signal{
		Time:       t,
		Direction:  SignalHold,
		Confidence: 0,
		Reason:     reason,
	}
}
