package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/stratbench-lab/stratbench/internal/results"
	"github.com/stratbench-lab/stratbench/internal/types"
)

// NewRunsTable creates a table for the persisted run list.
func NewRunsTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Created", Width: 18},
		{Title: "Strategy", Width: 20},
		{Title: "Symbol", Width: 10},
		{Title: "Return", Width: 12},
		{Title: "Trades", Width: 8},
	}

	return newTable(columns)
}

// NewTradesTable creates a table for a run's trade log.
func NewTradesTable() table.Model {
	columns := []table.Column{
		{Title: "Entry", Width: 18},
		{Title: "Exit", Width: 18},
		{Title: "Qty", Width: 8},
		{Title: "Entry Px", Width: 12},
		{Title: "Exit Px", Width: 12},
		{Title: "PnL", Width: 12},
		{Title: "Reason", Width: 12},
	}

	return newTable(columns)
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateRunRows replaces the run table rows with the given runs.
func UpdateRunRows(t table.Model, runs []results.Run) table.Model {
	rows := make([]table.Row, 0, len(runs))

	for _, run := range runs {
		rows = append(rows, table.Row{
			shortID(run.ID),
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Strategy,
			run.Symbol,
			FormatReturn(run.Report.TotalReturn),
			fmt.Sprintf("%d", run.Report.TotalTrades),
		})
	}

	t.SetRows(rows)

	return t
}

// UpdateTradeRows replaces the trade table rows with the given trades.
func UpdateTradeRows(t table.Model, trades []types.Trade) table.Model {
	rows := make([]table.Row, 0, len(trades))

	for i := range trades {
		trade := &trades[i]
		exitTime := "open"
		exitPrice := "-"
		pnl := "-"

		if ts, err := trade.ExitTime.Take(); err == nil {
			exitTime = ts.Format("2006-01-02 15:04")
			exitPrice = fmt.Sprintf("%.2f", trade.ExitPrice.TakeOr(0))
			pnl = fmt.Sprintf("%+.2f", trade.RealizedPnL)
		}

		rows = append(rows, table.Row{
			trade.EntryTime.Format("2006-01-02 15:04"),
			exitTime,
			fmt.Sprintf("%d", trade.Quantity),
			fmt.Sprintf("%.2f", trade.EntryPrice),
			exitPrice,
			pnl,
			string(trade.ExitReason),
		})
	}

	t.SetRows(rows)

	return t
}

// RenderRunDetail renders one run's metrics report as a labeled field list.
func RenderRunDetail(run results.Run) string {
	var s strings.Builder

	r := run.Report
	fields := []struct {
		label string
		value string
	}{
		{"Run ID", run.ID},
		{"Created", run.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Strategy", run.Strategy},
		{"Symbol", run.Symbol},
		{"Final Equity", fmt.Sprintf("%.2f", r.FinalEquity)},
		{"Total Return", FormatReturn(r.TotalReturn)},
		{"Annualized Return", FormatReturn(r.AnnualizedReturn)},
		{"Sharpe Ratio", FormatRatio(r.SharpeRatio)},
		{"Sortino Ratio", FormatRatio(r.SortinoRatio)},
		{"Max Drawdown", FormatReturn(r.MaxDrawdown)},
		{"Calmar Ratio", FormatRatio(r.CalmarRatio)},
		{"Recovery Factor", FormatRatio(r.RecoveryFactor)},
		{"Win Rate", fmt.Sprintf("%.2f%%", r.WinRate*100)},
		{"Profit Factor", FormatRatio(r.ProfitFactor)},
		{"Expectancy", fmt.Sprintf("%.4f", r.Expectancy)},
		{"Trades", fmt.Sprintf("%d (%d W / %d L / %d open)", r.TotalTrades, r.WinningTrades, r.LosingTrades, r.OpenTrades)},
		{"Commission Paid", fmt.Sprintf("%.2f", r.TotalCommission)},
		{"Slippage Cost", fmt.Sprintf("%.2f", r.TotalSlippage)},
	}

	for _, f := range fields {
		s.WriteString(LabelStyle.Render(f.label))
		s.WriteString(f.value)
		s.WriteString("\n")
	}

	return s.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
