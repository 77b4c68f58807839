// Package simulator turns strategy signals into a realistic position and
// cash trajectory under commission, slippage, and sizing rules.
package simulator

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stratbench-lab/stratbench/internal/logger"
	"github.com/stratbench-lab/stratbench/internal/series"
	"github.com/stratbench-lab/stratbench/internal/simulator/commission"
	"github.com/stratbench-lab/stratbench/internal/simulator/slippage"
	"github.com/stratbench-lab/stratbench/internal/strategy"
	"github.com/stratbench-lab/stratbench/internal/types"
	"github.com/stratbench-lab/stratbench/pkg/errors"
	"go.uber.org/zap"
)

// Simulator replays a strategy against a price series. A Simulator is
// stateless across runs; every Run starts from a fresh position and cash
// state, so one Simulator can serve many candidate evaluations.
type Simulator struct {
	config     Config
	commission commission.Model
	slippage   slippage.Model
	sizer      PositionSizer
	log        *logger.Logger
}

// New validates the configuration and builds a Simulator.
func New(config Config, log *logger.Logger) (*Simulator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	commissionModel, err := commission.ForConfig(config.CommissionModel, config.CommissionRate)
	if err != nil {
		return nil, err
	}

	slippageModel, err := slippage.ForConfig(config.SlippageModel, config.SlippageBps)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		config:     config,
		commission: commissionModel,
		slippage:   slippageModel,
		sizer:      NewFractionalSizer(config.MaxPositionFraction),
		log:        log,
	}, nil
}

// runState is the mutable account state of a single run.
type runState struct {
	cash     decimal.Decimal
	position types.Position
	trades   []types.Trade
	// openTrade indexes into trades while a position is open, -1 otherwise.
	openTrade int
}

// Run replays the strategy over the series and returns the equity curve
// and trade log. The strategy sees only the history prefix up to and
// including each bar. Identical inputs produce identical outputs.
//
// Any position still open after the last bar is marked to market in the
// final equity point but not force-closed, so strategies with and without
// trailing exposure stay comparable. All consumers of the trade log share
// this policy.
func (s *Simulator) Run(priceSeries *series.PriceSeries, strat strategy.Strategy) (types.EquityCurve, []types.Trade, error) {
	if priceSeries == nil || priceSeries.Len() == 0 {
		return nil, nil, errors.New(errors.ErrCodeEmptySeries, "price series is empty")
	}

	state := &runState{
		cash:      decimal.NewFromFloat(s.config.InitialCapital),
		trades:    []types.Trade{},
		openTrade: -1,
	}

	bars := priceSeries.Bars()
	curve := make(types.EquityCurve, 0, len(bars))

	for i, bar := range bars {
		// Risk control comes before any discretionary action: a stop-loss
		// breach on this bar closes the position even if the strategy
		// would also say SELL.
		if state.position.Open() && state.position.StopLoss.IsSome() {
			stop := state.position.StopLoss.Unwrap()
			if bar.Low <= stop {
				fill := s.slippage.Fill(stop, types.SignalSell, state.position.Quantity, bar.Volume)
				s.closePosition(state, bar, stop, fill, types.ExitReasonStopLoss)
			}
		}

		signal, err := strat.Evaluate(priceSeries.Prefix(i))
		if err != nil {
			return nil, nil, errors.Wrapf(errors.ErrCodeStrategyEvaluation, err,
				"strategy %s failed at bar %d", strat.Name(), i)
		}

		switch {
		case state.position.Open() && signal.Direction == types.SignalSell:
			fill := s.slippage.Fill(bar.Close, types.SignalSell, state.position.Quantity, bar.Volume)
			s.closePosition(state, bar, bar.Close, fill, types.ExitReasonSignal)
		case !state.position.Open() && signal.Direction == types.SignalBuy && signal.Confidence >= s.config.MinConfidence:
			s.openPosition(state, priceSeries.Symbol(), strat.Name(), bar, signal)
		}

		cash, _ := state.cash.Float64()
		positionValue := state.position.MarketValue(bar.Close)
		total, _ := state.cash.Add(decimal.NewFromFloat(positionValue)).Float64()

		curve = append(curve, types.EquityPoint{
			Time:          bar.Time,
			Cash:          cash,
			PositionValue: positionValue,
			TotalEquity:   total,
		})
	}

	return curve, state.trades, nil
}

// openPosition sizes, fills, and books a new long position. An order that
// cannot be afforded is skipped, not an error.
func (s *Simulator) openPosition(state *runState, symbol, strategyName string, bar types.Bar, signal types.Signal) {
	cash, _ := state.cash.Float64()
	available := cash - s.config.CashReserveFloor

	quantity := s.sizer.Size(available, cash, bar.Close, s.commission)
	if quantity <= 0 {
		s.log.Debug("order skipped: insufficient cash",
			zap.Time("bar", bar.Time),
			zap.Float64("cash", cash),
			zap.Float64("reserve", s.config.CashReserveFloor),
			zap.Float64("price", bar.Close),
		)

		return
	}

	fill := s.slippage.Fill(bar.Close, types.SignalBuy, quantity, bar.Volume)
	fee := s.commission.Calculate(quantity, fill)

	// Slippage moved the fill against us; re-fit the quantity to what the
	// slipped price still affords.
	cost := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(fill)).Add(decimal.NewFromFloat(fee))
	for quantity > 0 && cost.GreaterThan(decimal.NewFromFloat(available)) {
		quantity--
		fee = s.commission.Calculate(quantity, fill)
		cost = decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(fill)).Add(decimal.NewFromFloat(fee))
	}

	if quantity <= 0 {
		s.log.Debug("order skipped: insufficient cash after slippage",
			zap.Time("bar", bar.Time),
			zap.Float64("fill", fill),
		)

		return
	}

	state.cash = state.cash.Sub(cost)

	stopLoss := optional.None[float64]()
	if s.config.StopLossPct.IsSome() {
		stopLoss = optional.Some(fill * (1 - s.config.StopLossPct.Unwrap()))
	}

	state.position = types.Position{
		Symbol:        symbol,
		Quantity:      quantity,
		AvgEntryPrice: fill,
		OpenedAt:      bar.Time,
		StopLoss:      stopLoss,
	}

	slippageCost, _ := decimal.NewFromFloat(fill).Sub(decimal.NewFromFloat(bar.Close)).
		Mul(decimal.NewFromInt(quantity)).Float64()

	state.trades = append(state.trades, types.Trade{
		ID:          tradeID(symbol, strategyName, len(state.trades)),
		Symbol:      symbol,
		Strategy:    strategyName,
		EntryTime:   bar.Time,
		EntryPrice:  fill,
		Quantity:    quantity,
		Commission:  fee,
		Slippage:    slippageCost,
		EntryReason: signal.Reason,
	})
	state.openTrade = len(state.trades) - 1
}

// closePosition books the exit fill, credits cash, and realizes PnL.
// Commission and slippage are deducted before the PnL is recorded: the
// entry and exit prices already carry the slippage adjustment, so the
// realized figure nets out commission on top of the slipped prices.
func (s *Simulator) closePosition(state *runState, bar types.Bar, reference, fill float64, reason types.ExitReason) {
	quantity := state.position.Quantity
	fee := s.commission.Calculate(quantity, fill)

	proceeds := decimal.NewFromInt(quantity).Mul(decimal.NewFromFloat(fill)).Sub(decimal.NewFromFloat(fee))
	state.cash = state.cash.Add(proceeds)

	trade := &state.trades[state.openTrade]
	trade.ExitTime = optional.Some(bar.Time)
	trade.ExitPrice = optional.Some(fill)
	trade.Commission += fee
	trade.ExitReason = reason

	// Exit slippage is the adverse move off the reference price: the bar
	// close for signal exits, the stop level for stop fills.
	exitSlip, _ := decimal.NewFromFloat(reference).Sub(decimal.NewFromFloat(fill)).
		Mul(decimal.NewFromInt(quantity)).Float64()
	if exitSlip > 0 {
		trade.Slippage += exitSlip
	}

	trade.RealizedPnL = types.CalculateRealizedPnL(trade.EntryPrice, fill, quantity, trade.Commission)

	state.position = types.Position{}
	state.openTrade = -1
}

// tradeID derives a stable UUID for a trade so identical runs produce
// byte-identical trade logs.
func tradeID(symbol, strategyName string, index int) string {
	name := fmt.Sprintf("%s|%s|%d", symbol, strategyName, index)

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
