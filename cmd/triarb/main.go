// Package main is the entry point for the triangular arbitrage engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/vantos/triarb/business/book"
	bookapp "github.com/vantos/triarb/business/book/app"
	bookdi "github.com/vantos/triarb/business/book/di"
	"github.com/vantos/triarb/business/chain"
	chaindi "github.com/vantos/triarb/business/chain/di"
	"github.com/vantos/triarb/business/orders"
	"github.com/vantos/triarb/business/session"
	sessionapp "github.com/vantos/triarb/business/session/app"
	sessiondi "github.com/vantos/triarb/business/session/di"
	"github.com/vantos/triarb/business/solver"
	"github.com/vantos/triarb/business/trading"
	tradingdi "github.com/vantos/triarb/business/trading/di"
	"github.com/vantos/triarb/business/wallet"
	"github.com/vantos/triarb/internal/apm"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/health"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/metrics"
	"github.com/vantos/triarb/internal/monolith"
	"github.com/vantos/triarb/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("triarb %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	tuiMode := !*cliMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(parentCtx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()
	var fatalErr atomic.Pointer[error]

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}

	var log *logger.Logger
	if tuiMode {
		log = logger.New(io.Discard, logLevel, cfg.App.Name, nil)
	} else {
		log = logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
		log.Info(ctx, "starting triarb",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&book.Module{},    // book store, no dependencies
		&wallet.Module{},  // wallet store, depends on session for recompute requests
		&orders.Module{},  // order/trade store, depends on session for frame dispatch
		&session.Module{}, // websocket connection, wires book/wallet/order handlers
		&solver.Module{},  // cycle-path solver, no dependencies
		&chain.Module{},   // order-chain coordinator, depends on session and orders
		&trading.Module{}, // trading loop, ties book/solver/chain together
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	var runErr error
	if tuiMode {
		startFunc := func() error {
			return startEngine(ctx, cancel, &fatalErr, mono, modules, log)
		}
		runErr = runTUI(ctx, startFunc)
	} else {
		if err := startEngine(ctx, cancel, &fatalErr, mono, modules, log); err != nil {
			return err
		}
		runErr = runCLI(ctx, log)
	}

	if p := fatalErr.Load(); p != nil {
		return *p
	}
	return runErr
}

// startEngine starts every module and wires observer callbacks from the
// trading loop and chain coordinator into the package-level UI sink,
// which renders them in TUI mode; in CLI mode ui.Program is nil, so
// ui.Send drops them and only the modules' own log lines appear. It
// also watches the Session Controller's
// fatal-error channel (currently only a protocol-version mismatch) and
// stops the engine unconditionally if it fires, per spec.md §7.
func startEngine(ctx context.Context, cancel context.CancelFunc, fatalErr *atomic.Pointer[error], mono monolith.Monolith, modules []monolith.Module, log logger.LoggerInterface) error {
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	loop := tradingdi.GetLoop(mono.Services())
	coordinator := chaindi.GetCoordinator(mono.Services())

	loop.OnSolution(func(legs int, profitUSD string) {
		ui.Send(ui.SolutionMsg{Legs: legs, ProfitUSD: profitUSD})
	})
	var solves uint64
	var solveTotal time.Duration
	loop.OnTick(func(ticksRun uint64, lastSolveLatency time.Duration) {
		if lastSolveLatency > 0 {
			solves++
			solveTotal += lastSolveLatency
		}
		var avgMs float64
		if solves > 0 {
			avgMs = float64(solveTotal) / float64(solves) / float64(time.Millisecond)
		}
		ui.Send(ui.StatsMsg{TicksRun: int64(ticksRun), AvgSolveLatencyMs: avgMs})
	})
	coordinator.OnStep(func(step, total int, symbol, state string) {
		ui.Send(ui.ChainStepMsg{Step: step, Total: total, Symbol: symbol, State: state})
	})
	coordinator.OnDone(func(profitUSD string, failed bool) {
		ui.Send(ui.ChainDoneMsg{ProfitUSD: profitUSD, Failed: failed})
	})

	conn := sessiondi.GetController(mono.Services())
	books := bookdi.GetStore(mono.Services())
	symbols := mono.Config().Trading.SymbolUniverse

	go pollStatus(ctx, conn, books, symbols)
	go func() {
		select {
		case <-ctx.Done():
		case err := <-conn.FatalErr():
			log.Error(ctx, "fatal protocol error, stopping engine", "error", err)
			ui.Send(ui.ErrorMsg{Error: err})
			fatalErr.Store(&err)
			cancel()
		}
	}()

	log.Info(ctx, "engine started")
	return nil
}

// pollStatus periodically samples connection health, maintenance state,
// and per-symbol book tops, relaying them to the UI. The underlying
// stores expose no push notifications for this slowly-changing state,
// so a short poll interval is cheap and simple.
func pollStatus(ctx context.Context, conn *sessionapp.Controller, books *bookapp.Store, symbols []string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	lastConnected := false
	lastMaintenance := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			connected := conn.IsConnected()
			if connected != lastConnected {
				lastConnected = connected
				ui.Send(ui.ConnectionStatusMsg{Connected: connected})
			}
			maintenance := conn.IsMaintenanceMode()
			if maintenance != lastMaintenance {
				lastMaintenance = maintenance
				ui.Send(ui.MaintenanceMsg{Active: maintenance})
			}
			for _, symbol := range symbols {
				bid, bidOK := books.BestBid(symbol)
				ask, askOK := books.BestAsk(symbol)
				if !bidOK && !askOK {
					continue
				}
				bidStr, askStr := "-", "-"
				if bidOK {
					bidStr = bid.Price.ToDecimal().String()
				}
				if askOK {
					askStr = ask.Price.ToDecimal().String()
				}
				ui.Send(ui.BookTopMsg{Symbol: symbol, Bid: bidStr, Ask: askStr})
			}
		}
	}
}

func runCLI(ctx context.Context, log logger.LoggerInterface) error {
	log.Info(ctx, "all modules started, trading loop running")
	<-ctx.Done()
	log.Info(ctx, "shutting down")
	return nil
}

func runTUI(ctx context.Context, startFunc func() error) error {
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
