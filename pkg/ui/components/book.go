// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BookRow is one symbol's current top-of-book.
type BookRow struct {
	Symbol string
	Bid    string
	Ask    string
}

// BookComponent renders the tracked symbols' book tops.
type BookComponent struct {
	rows map[string]BookRow
}

// NewBookComponent creates an empty book component.
func NewBookComponent() *BookComponent {
	return &BookComponent{rows: make(map[string]BookRow)}
}

// Update upserts one symbol's top-of-book row.
func (b *BookComponent) Update(row BookRow) {
	b.rows[row.Symbol] = row
}

// View renders the book component.
func (b *BookComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	bidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	askStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var result string
	result = headerStyle.Render("ORDER BOOK TOPS")
	result += "\n\n"

	if len(b.rows) == 0 {
		return result + dimStyle.Render("  Waiting for book data...") + "\n"
	}

	symbols := make([]string, 0, len(b.rows))
	for s := range b.rows {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	result += fmt.Sprintf("  %-10s  %14s  %14s\n", "Symbol", "Bid", "Ask")
	result += dimStyle.Render("  "+strings.Repeat("─", 44)) + "\n"
	for _, s := range symbols {
		row := b.rows[s]
		result += fmt.Sprintf("  %-10s  %s  %s\n",
			row.Symbol,
			bidStyle.Render(fmt.Sprintf("%14s", row.Bid)),
			askStyle.Render(fmt.Sprintf("%14s", row.Ask)),
		)
	}

	return result
}
