// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds engine-wide counters for display.
type Stats struct {
	TicksRun        int64
	SolutionsFound  int64
	ChainsCompleted int64
	ChainsProfitable int64
	AvgSolveLatencyMs float64
	Errors          int64
}

// StatsComponent renders engine statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	profitableRate := float64(0)
	if s.stats.ChainsCompleted > 0 {
		profitableRate = float64(s.stats.ChainsProfitable) / float64(s.stats.ChainsCompleted) * 100
	}

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	if s.stats.Errors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Errors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Ticks run: %s  │  Solutions found: %s  │  Chains profitable: %s (%.1f%%)\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.TicksRun)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.SolutionsFound)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.ChainsProfitable)),
			profitableRate,
		) +
		fmt.Sprintf("Avg solve latency: %s  │  Errors: %s",
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.AvgSolveLatencyMs)),
			errorsDisplay,
		)
}
