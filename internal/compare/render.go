package compare

import (
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/stratbench-lab/stratbench/internal/types"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// RenderTable renders a ranking as a fixed-width table for terminal
// output. Presentation only; all numeric logic lives in the metrics
// engine.
func RenderTable(ranked []Ranked, metricName string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}

			return tableCellStyle
		}).
		Headers("RANK", "STRATEGY", strings.ToUpper(metricName), "TRADES", "WIN RATE", "MAX DD")

	for i, row := range ranked {
		t.Row(
			strconv.Itoa(i+1),
			row.Strategy,
			formatScore(row.Score),
			strconv.Itoa(row.Report.TotalTrades),
			fmt.Sprintf("%.2f%%", row.Report.WinRate*100),
			fmt.Sprintf("%.2f%%", row.Report.MaxDrawdown*100),
		)
	}

	return t.String()
}

// RenderCSV renders a ranking as comma-delimited text with one column per
// recognized metric.
func RenderCSV(ranked []Ranked) (string, error) {
	var out strings.Builder
	writer := csv.NewWriter(&out)

	header := append([]string{"rank", "strategy"}, types.MetricNames()...)
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for i, row := range ranked {
		values := row.Report.AsMap()

		record := make([]string, 0, len(header))
		record = append(record, strconv.Itoa(i+1), row.Strategy)
		for _, name := range types.MetricNames() {
			record = append(record, formatScore(values[name]))
		}

		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()

	return out.String(), writer.Error()
}

// formatScore keeps the infinite profit-factor sentinel readable in both
// exports.
func formatScore(value float64) string {
	if math.IsInf(value, 1) {
		return "inf"
	}

	if math.IsInf(value, -1) {
		return "-inf"
	}

	return strconv.FormatFloat(value, 'f', 6, 64)
}
