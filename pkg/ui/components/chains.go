// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ChainRow is a completed (or failed) chain's summary.
type ChainRow struct {
	Timestamp string
	ProfitUSD string
	Failed    bool
}

// ChainsComponent renders recent chain outcomes and the currently
// in-flight chain's step progress, if any.
type ChainsComponent struct {
	rows       []ChainRow
	maxRows    int
	inFlight   string // current step description, empty if no chain active
}

// NewChainsComponent creates a new chains component keeping up to
// maxRows recent outcomes.
func NewChainsComponent(maxRows int) *ChainsComponent {
	return &ChainsComponent{maxRows: maxRows}
}

// Add records a terminal chain outcome, most recent first.
func (c *ChainsComponent) Add(row ChainRow) {
	c.rows = append([]ChainRow{row}, c.rows...)
	if len(c.rows) > c.maxRows {
		c.rows = c.rows[:c.maxRows]
	}
	c.inFlight = ""
}

// SetInFlight records the currently-running chain's step description.
func (c *ChainsComponent) SetInFlight(description string) {
	c.inFlight = description
}

// View renders the chains component.
func (c *ChainsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)

	var result string
	result = headerStyle.Render("CHAINS")
	result += "\n\n"

	if c.inFlight != "" {
		result += activeStyle.Render("  ▶ "+c.inFlight) + "\n\n"
	}

	if len(c.rows) == 0 {
		result += mutedStyle.Render("  No chains completed yet.\n")
		return result
	}

	for _, row := range c.rows {
		icon, style := profitStyle, profitStyle
		if row.Failed {
			icon = failStyle
			style = failStyle
		}
		result += fmt.Sprintf("  %s [%s] %s\n",
			icon.Render("●"),
			row.Timestamp,
			style.Render(row.ProfitUSD),
		)
	}

	return result
}
