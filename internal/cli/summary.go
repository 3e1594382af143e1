// internal/cli/summary.go
package redqueen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/mwiater/redqueen/internal/report"
)

type summaryRow struct {
	id      string
	tool    string
	rounds  int
	min     float64
	mean    float64
	quality string
}

func newSummaryRow(rec fixture.Export) summaryRow {
	names := make([]string, 0, len(rec.Stats.Quality))
	for name := range rec.Stats.Quality {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		s := report.Summarize(rec.Stats.Quality[name])
		parts = append(parts, fmt.Sprintf("%s=%.4g", name, s.Median))
	}
	timings := report.Summarize(rec.Stats.Timings)
	return summaryRow{
		id:      rec.ID,
		tool:    rec.Tool,
		rounds:  timings.N,
		min:     timings.Min,
		mean:    timings.Mean,
		quality: strings.Join(parts, " "),
	}
}

// renderSummary lays the recorded benchmarks out as a table.
func renderSummary(rows []summaryRow) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	numStyle := cellStyle.Align(lipgloss.Right)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Benchmark", "Tool", "Rounds", "Min", "Mean", "Quality").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2 && col <= 4:
				return numStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		t.Row(r.id, r.tool, fmt.Sprint(r.rounds), formatDuration(r.min), formatDuration(r.mean), r.quality)
	}
	return t.String()
}

// formatDuration renders seconds with a unit suited to the magnitude.
func formatDuration(seconds float64) string {
	switch {
	case seconds == 0:
		return "0s"
	case seconds < 1e-6:
		return fmt.Sprintf("%.1fns", seconds*1e9)
	case seconds < 1e-3:
		return fmt.Sprintf("%.2fµs", seconds*1e6)
	case seconds < 1:
		return fmt.Sprintf("%.2fms", seconds*1e3)
	default:
		return fmt.Sprintf("%.3fs", seconds)
	}
}
