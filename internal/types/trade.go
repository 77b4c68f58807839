package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitReasonSignal   ExitReason = "strategy_sell"
	ExitReasonStopLoss ExitReason = "stop_loss"
)

// Position represents the current holding of a single symbol. The base
// simulator holds at most one open position at a time, long only, whole
// units only.
type Position struct {
	Symbol        string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Quantity      int64     `csv:"quantity" yaml:"quantity" json:"quantity"`
	AvgEntryPrice float64   `csv:"avg_entry_price" yaml:"avg_entry_price" json:"avg_entry_price"`
	OpenedAt      time.Time `csv:"opened_at" yaml:"opened_at" json:"opened_at"`
	// StopLoss is the price at or below which the position is closed out.
	StopLoss optional.Option[float64] `csv:"stop_loss" yaml:"stop_loss" json:"stop_loss"`
}

// Open reports whether the position holds any units.
func (p *Position) Open() bool {
	return p.Quantity > 0
}

// MarketValue returns the mark-to-market value of the position at the
// given price.
func (p *Position) MarketValue(price float64) float64 {
	value, _ := decimal.NewFromInt(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return value
}

// Trade is one round trip (or still-open entry) through a position.
// Created when a BUY opens a position; exit fields are set when a SELL
// signal or stop-loss closes it.
type Trade struct {
	ID         string    `csv:"id" yaml:"id" json:"id"`
	Symbol     string    `csv:"symbol" yaml:"symbol" json:"symbol"`
	Strategy   string    `csv:"strategy" yaml:"strategy" json:"strategy"`
	EntryTime  time.Time `csv:"entry_time" yaml:"entry_time" json:"entry_time"`
	EntryPrice float64   `csv:"entry_price" yaml:"entry_price" json:"entry_price"`
	Quantity   int64     `csv:"quantity" yaml:"quantity" json:"quantity"`
	// ExitTime and ExitPrice are unset while the trade is open. An exit
	// never precedes the entry.
	ExitTime  optional.Option[time.Time] `csv:"exit_time" yaml:"exit_time" json:"exit_time"`
	ExitPrice optional.Option[float64]   `csv:"exit_price" yaml:"exit_price" json:"exit_price"`
	// Commission is the total commission paid across entry and exit.
	Commission float64 `csv:"commission" yaml:"commission" json:"commission"`
	// Slippage is the total cost of the modeled gap between requested and
	// filled prices across entry and exit.
	Slippage float64 `csv:"slippage" yaml:"slippage" json:"slippage"`
	// RealizedPnL is set on close, net of commission and slippage.
	RealizedPnL float64    `csv:"realized_pnl" yaml:"realized_pnl" json:"realized_pnl"`
	ExitReason  ExitReason `csv:"exit_reason" yaml:"exit_reason" json:"exit_reason"`
	// EntryReason carries the strategy's rationale for the entry signal.
	EntryReason string `csv:"entry_reason" yaml:"entry_reason" json:"entry_reason"`
}

// Closed reports whether the trade has been exited.
func (t *Trade) Closed() bool {
	return t.ExitTime.IsSome()
}

// Win reports whether the trade closed with positive realized PnL.
func (t *Trade) Win() bool {
	return t.Closed() && t.RealizedPnL > 0
}

// HoldingTime returns the duration the trade was held, or zero while open.
func (t *Trade) HoldingTime() time.Duration {
	if t.ExitTime.IsNone() {
		return 0
	}

	return t.ExitTime.Unwrap().Sub(t.EntryTime)
}

// CalculateRealizedPnL computes (exit - entry) * quantity - costs using
// decimal arithmetic so repeated trades do not accumulate float drift.
func CalculateRealizedPnL(entryPrice, exitPrice float64, quantity int64, totalCosts float64) float64 {
	qty := decimal.NewFromInt(quantity)
	entry := decimal.NewFromFloat(entryPrice).Mul(qty)
	exit := decimal.NewFromFloat(exitPrice).Mul(qty)
	pnl, _ := exit.Sub(entry).Sub(decimal.NewFromFloat(totalCosts)).Float64()

	return pnl
}
