package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stratbench-lab/stratbench/internal/results"
	"github.com/stratbench-lab/stratbench/internal/types"
)

// Application states.
const (
	StateRunList = iota
	StateRunDetail
	StateTradeList
)

// Model is the main Bubble Tea model for the results browser.
type Model struct {
	state       int
	store       *results.Store
	runsTable   table.Model
	tradesTable table.Model
	runs        []results.Run
	selected    results.Run
	trades      []types.Trade
	err         error
	width       int
	height      int
}

// NewModel creates a new Model reading from the given store.
func NewModel(store *results.Store) Model {
	return Model{
		state:       StateRunList,
		store:       store,
		runsTable:   NewRunsTable(),
		tradesTable: NewTradesTable(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadRuns()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			return m.handleEsc()
		case "r":
			if m.state == StateRunList {
				return m, m.loadRuns()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.runsTable.SetWidth(msg.Width)
		m.runsTable.SetHeight(msg.Height - 6)
		m.tradesTable.SetWidth(msg.Width)
		m.tradesTable.SetHeight(msg.Height - 6)
		return m, nil

	case RunsLoadedMsg:
		m.runs = msg.Runs
		m.runsTable = UpdateRunRows(m.runsTable, m.runs)
		m.err = nil
		return m, nil

	case TradesLoadedMsg:
		m.trades = msg.Trades
		m.tradesTable = UpdateTradeRows(m.tradesTable, m.trades)
		m.state = StateTradeList
		m.err = nil
		return m, nil

	case LoadErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateRunList:
		return m.updateRunList(msg)
	case StateRunDetail:
		return m.updateRunDetail(msg)
	case StateTradeList:
		return m.updateTradeList(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateRunDetail:
		m.state = StateRunList
	case StateTradeList:
		m.trades = nil
		m.state = StateRunDetail
	}
	return m, nil
}

func (m Model) updateRunList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if i := m.runsTable.Cursor(); i >= 0 && i < len(m.runs) {
				m.selected = m.runs[i]
				m.state = StateRunDetail
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.runsTable, cmd = m.runsTable.Update(msg)
	return m, cmd
}

func (m Model) updateRunDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "t":
			return m, m.loadTrades(m.selected.ID)
		}
	}

	return m, nil
}

func (m Model) updateTradeList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.tradesTable, cmd = m.tradesTable.Update(msg)
	return m, cmd
}

// loadRuns returns a command that reads all runs from the store.
func (m Model) loadRuns() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		runs, err := store.ListRuns()
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return RunsLoadedMsg{Runs: runs}
	}
}

// loadTrades returns a command that reads one run's trade log.
func (m Model) loadTrades(runID string) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		trades, err := store.GetTrades(runID)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}

		return TradesLoadedMsg{Trades: trades}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateRunList:
		s.WriteString(TitleStyle.Render("StratBench - Saved Runs"))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		if len(m.runs) == 0 {
			s.WriteString("No saved runs.\n")
		} else {
			s.WriteString(m.runsTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Enter: details | r: reload | q: quit"))

	case StateRunDetail:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Run %s - %s on %s", shortID(m.selected.ID), m.selected.Strategy, m.selected.Symbol)))
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(RenderRunDetail(m.selected))
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Enter: trades | Esc: back | q: quit"))

	case StateTradeList:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Trades - %s on %s", m.selected.Strategy, m.selected.Symbol)))
		s.WriteString("\n\n")

		if len(m.trades) == 0 {
			s.WriteString("No trades recorded for this run.\n")
		} else {
			s.WriteString(m.tradesTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Esc: back | q: quit"))
	}

	return s.String()
}
