package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle for field names in the detail view.
	LabelStyle = lipgloss.NewStyle().Faint(true).Width(20)
)

// FormatReturn formats a fractional return as a signed percentage with a
// direction indicator.
func FormatReturn(r float64) string {
	s := fmt.Sprintf("%+.2f%%", r*100)

	if r > 0 {
		return s + " ▲"
	} else if r < 0 {
		return s + " ▼"
	}

	return s
}

// FormatRatio renders a metric value, spelling out infinities instead of
// printing Inf.
func FormatRatio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}

	if math.IsInf(v, -1) {
		return "-inf"
	}

	return fmt.Sprintf("%.4f", v)
}
