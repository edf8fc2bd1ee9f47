// Package ui provides the Bubble Tea TUI for the arbitrage engine.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantos/triarb/pkg/ui/components"
)

// ConnectionInfo holds connection state and latency.
type ConnectionInfo struct {
	Connected bool
	Latency   time.Duration
	LastSeen  time.Time
}

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	book   *components.BookComponent
	chains *components.ChainsComponent
	stats  *components.StatsComponent

	phase        Phase
	welcomeStart time.Time

	ready      bool
	quitting   bool
	width      int
	height     int
	connection ConnectionInfo
	maintenance bool
	lastUpdate time.Time
	errors     []ErrorEntry
	logs       []string

	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time

	solutionsFound uint64
	chainsRun      uint64
	chainsProfitable uint64
	errorCount     int64
	ticksRun       int64
	avgSolveLatencyMs float64
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		book:         components.NewBookComponent(),
		chains:       components.NewChainsComponent(20),
		stats:        components.NewStatsComponent(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
		startupSteps: map[string]*StartupStep{
			"config":  {Name: "Loading configuration", Status: "pending"},
			"session": {Name: "Connecting to venue", Status: "pending"},
			"books":   {Name: "Subscribing to books", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		switch msg.String() {
		case "e":
			m.errors = make([]ErrorEntry, 0, 3)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseStartup
			m.startupTime = time.Now()
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case BookTopMsg:
		m.book.Update(components.BookRow{Symbol: msg.Symbol, Bid: msg.Bid, Ask: msg.Ask})
		m.lastUpdate = time.Now()
		if step, ok := m.startupSteps["books"]; ok && step.Status != "done" {
			step.Status = "done"
			if s, ok := m.startupSteps["session"]; ok && s.Status == "connected" {
				m.startupComplete = true
			}
		}

	case SolutionMsg:
		m.solutionsFound++
		m.logs = addLog(m.logs, "info", fmt.Sprintf("admissible cycle: %d legs, est. profit %s", msg.Legs, msg.ProfitUSD))
		m.lastUpdate = time.Now()

	case ChainStepMsg:
		m.chains.SetInFlight(fmt.Sprintf("step %d/%d %s: %s", msg.Step+1, msg.Total, msg.Symbol, msg.State))
		m.lastUpdate = time.Now()

	case ChainDoneMsg:
		m.chainsRun++
		if !msg.Failed {
			m.chainsProfitable++
		}
		m.chains.Add(components.ChainRow{
			Timestamp: time.Now().Format("15:04:05"),
			ProfitUSD: msg.ProfitUSD,
			Failed:    msg.Failed,
		})
		m.stats.Update(components.Stats{
			TicksRun:          m.ticksRun,
			SolutionsFound:    int64(m.solutionsFound),
			ChainsCompleted:   int64(m.chainsRun),
			ChainsProfitable:  int64(m.chainsProfitable),
			AvgSolveLatencyMs: m.avgSolveLatencyMs,
			Errors:            m.errorCount,
		})
		m.lastUpdate = time.Now()

	case StatsMsg:
		m.ticksRun = msg.TicksRun
		m.avgSolveLatencyMs = msg.AvgSolveLatencyMs
		m.stats.Update(components.Stats{
			TicksRun:          m.ticksRun,
			SolutionsFound:    int64(m.solutionsFound),
			ChainsCompleted:   int64(m.chainsRun),
			ChainsProfitable:  int64(m.chainsProfitable),
			AvgSolveLatencyMs: m.avgSolveLatencyMs,
			Errors:            m.errorCount,
		})

	case ConnectionStatusMsg:
		m.connection = ConnectionInfo{Connected: msg.Connected, Latency: msg.Latency, LastSeen: time.Now()}
		m.lastUpdate = time.Now()
		if step, ok := m.startupSteps["session"]; ok {
			if msg.Connected {
				step.Status = "connected"
			} else {
				step.Status = "connecting"
			}
		}
		if step, ok := m.startupSteps["config"]; ok {
			step.Status = "done"
		}
		allConnected := true
		for _, step := range m.startupSteps {
			if step.Status != "connected" && step.Status != "done" {
				allConnected = false
				break
			}
		}
		if allConnected {
			m.startupComplete = true
		}

	case MaintenanceMsg:
		m.maintenance = msg.Active

	case ErrorMsg:
		m.errorCount++
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		m.errors = append(m.errors, ErrorEntry{Message: msg.Error.Error(), Timestamp: time.Now()})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
	}

	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if !m.startupComplete {
			return m.renderStartupScreen()
		}
		m.phase = PhaseDashboard
		fallthrough
	case PhaseDashboard:
	}

	var b strings.Builder

	title := TitleStyle.Render(" triarb ")
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	leftCol := m.book.View()
	rightCol := m.chains.View()

	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Width(m.width - 4).Render(m.stats.View()))
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	helpText := "q: quit • e: clear errors"
	if m.maintenance {
		warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
		b.WriteString(warnStyle.Render("⏸ MAINTENANCE MODE"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(helpText))

	return b.String()
}

func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	goldStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	greenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(titleStyle.Render("  T R I A R B"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  triangular arbitrage engine"))
	sb.WriteString("\n\n\n")
	sb.WriteString(goldStyle.Render("  hunting cycles across the book"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("  Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(mutedStyle.Render("  Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStartupScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	connectingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(titleStyle.Render("  triarb"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	stepOrder := []string{"config", "session", "books"}
	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon, statusText, style = spinners[idx], "Connecting...", connectingStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", failedStyle
		default:
			icon, statusText, style = "○", "Pending", mutedStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon), mutedStyle.Render(step.Name), style.Render(statusText)))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.connection.Connected {
		status := "venue"
		if m.connection.Latency > 0 {
			status = fmt.Sprintf("venue (%dms)", m.connection.Latency.Milliseconds())
		}
		parts = append(parts, StatusConnected.Render("● "+status))
	} else {
		parts = append(parts, StatusDisconnected.Render("○ venue (disconnected)"))
	}

	cycleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	parts = append(parts, cycleStyle.Render(fmt.Sprintf("Cycles: %d", m.solutionsFound)))
	parts = append(parts, cycleStyle.Render(fmt.Sprintf("Chains: %d", m.chainsRun)))

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
var OnStartModules func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
