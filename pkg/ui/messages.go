// Package ui provides the Bubble Tea TUI for the arbitrage engine.
package ui

import "time"

// Message types for TUI updates.

// BookTopMsg carries a tracked symbol's best bid and ask; the engine's
// status poll sends one for every symbol with a book on each poll.
type BookTopMsg struct {
	Symbol string
	Bid    string
	Ask    string
}

// SolutionMsg is sent when the solver finds an admissible cycle.
type SolutionMsg struct {
	Legs      int
	ProfitUSD string
}

// ChainStepMsg is sent on every chain step state transition.
type ChainStepMsg struct {
	Step   int
	Total  int
	Symbol string
	State  string
}

// ChainDoneMsg is sent when a chain reaches a terminal state.
type ChainDoneMsg struct {
	ProfitUSD string
	Failed    bool
}

// ConnectionStatusMsg is sent when the session connection state changes.
type ConnectionStatusMsg struct {
	Connected bool
	Latency   time.Duration
}

// MaintenanceMsg is sent when the venue enters or leaves maintenance mode.
type MaintenanceMsg struct {
	Active bool
}

// StatsMsg carries updated engine-wide counters.
type StatsMsg struct {
	TicksRun          int64
	AvgSolveLatencyMs float64
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
