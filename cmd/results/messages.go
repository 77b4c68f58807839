package main

import (
	"github.com/stratbench-lab/stratbench/internal/results"
	"github.com/stratbench-lab/stratbench/internal/types"
)

// RunsLoadedMsg carries the persisted runs from the store.
type RunsLoadedMsg struct {
	Runs []results.Run
}

// TradesLoadedMsg carries the trade log for the selected run.
type TradesLoadedMsg struct {
	Trades []types.Trade
}

// LoadErrorMsg indicates a store read failure.
type LoadErrorMsg struct {
	Err error
}
