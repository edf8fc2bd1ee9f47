// Package app hosts the Trading Loop: the fixed-interval tick that
// snapshots the book, runs the Cycle-Path Algorithm, and hands any
// admissible solution to the Order-Chain Coordinator.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	bookapp "github.com/vantos/triarb/business/book/app"
	chainapp "github.com/vantos/triarb/business/chain/app"
	sessionapp "github.com/vantos/triarb/business/session/app"
	sessiondomain "github.com/vantos/triarb/business/session/domain"
	solverapp "github.com/vantos/triarb/business/solver/app"
	solverdomain "github.com/vantos/triarb/business/solver/domain"
	walletapp "github.com/vantos/triarb/business/wallet/app"
	walletdomain "github.com/vantos/triarb/business/wallet/domain"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
)

// chainRunTimeout bounds how long a fire-and-forget chain run is
// allowed to occupy the "chain active" slot, independent of the
// Coordinator's own 60s internal cap — belt and suspenders against a
// Coordinator bug wedging the trading loop open forever.
const chainRunTimeout = 65 * time.Second

// Loop drives the fixed-interval arbitrage search. It owns none of the
// stores it reads — only the cadence and the guard-condition checks
// that gate whether a tick is allowed to search and trade at all.
type Loop struct {
	cfg        *config.TradingConfig
	conn       *sessionapp.Controller
	subs       *sessiondomain.Registry
	books      *bookapp.Store
	solver     *solverapp.Solver
	chain      *chainapp.Coordinator
	wallets    *walletapp.Store
	currencies *money.Registry
	log        logger.LoggerInterface

	ticks      uint64
	onSolution func(legs int, profitUSD string)
	onTick     func(ticksRun uint64, lastSolveLatency time.Duration)
}

// OnSolution registers a callback invoked whenever a tick finds an
// admissible cycle, before the chain is fired. Intended for UI wiring.
func (l *Loop) OnSolution(h func(legs int, profitUSD string)) {
	l.onSolution = h
}

// OnTick registers a callback invoked after every tick (whether or not
// it was ready to search), reporting the running tick count and the
// latency of the most recent solve attempt (zero if none ran).
func (l *Loop) OnTick(h func(ticksRun uint64, lastSolveLatency time.Duration)) {
	l.onTick = h
}

// NewLoop wires a Trading Loop over its already-constructed collaborators.
func NewLoop(
	cfg *config.TradingConfig,
	conn *sessionapp.Controller,
	subs *sessiondomain.Registry,
	books *bookapp.Store,
	solver *solverapp.Solver,
	chain *chainapp.Coordinator,
	wallets *walletapp.Store,
	currencies *money.Registry,
	log logger.LoggerInterface,
) *Loop {
	return &Loop{
		cfg: cfg, conn: conn, subs: subs, books: books,
		solver: solver, chain: chain, wallets: wallets, currencies: currencies, log: log,
	}
}

// Run fires a tick every MinTradingInterval until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.MinTradingInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// ready evaluates the trading loop's admission guards: a live,
// non-maintenance, fully-capable session; every required book
// subscribed; and no chain already in flight.
func (l *Loop) ready() bool {
	if !l.conn.IsConnected() || l.conn.IsMaintenanceMode() {
		return false
	}
	if !l.conn.CanTrade() {
		return false
	}
	if !l.subs.AllBooksReady() {
		return false
	}
	if l.chain.IsActive() {
		return false
	}
	return true
}

func (l *Loop) tick(ctx context.Context) {
	l.ticks++
	if !l.ready() {
		if l.onTick != nil {
			l.onTick(l.ticks, 0)
		}
		return
	}

	startAmount, ok := l.startAmount()
	if !ok {
		l.log.Warn(ctx, "trading: base wallet unavailable or stale, skipping tick", "currency", l.cfg.Currency)
		if l.onTick != nil {
			l.onTick(l.ticks, 0)
		}
		return
	}

	snapshots := l.books.SnapshotForSolver()
	graph := solverapp.BuildGraph(snapshots, l.currencies, l.cfg.SymbolUniverse, solverapp.DefaultSplitSymbol)

	params := solverapp.Params{
		BaseCurrency:  l.cfg.Currency,
		StartAmount:   startAmount,
		MinPathLength: l.cfg.MinPathLength,
		MaxPathLength: l.cfg.MaxPathLength,
		MinProfitUSD:  l.cfg.MinPathProfitUSDDecimal(),
		TakerFee:      l.cfg.TakerFee(),
		MinOrderSize:  l.cfg.MinOrderSize,
		USDRate:       l.usdRate,
	}

	solveCtx, cancel := context.WithTimeout(ctx, l.cfg.SolverTimeout())
	defer cancel()

	start := time.Now()
	sol, err := l.solver.Solve(solveCtx, graph, params)
	latency := time.Since(start)
	if l.onTick != nil {
		l.onTick(l.ticks, latency)
	}
	if err != nil {
		l.log.Warn(ctx, "trading: solve failed", "error", err)
		return
	}
	if sol == nil {
		return
	}

	l.log.Info(ctx, "trading: admissible cycle found",
		"legs", len(sol.Instructions), "profit_usd", sol.EstimatedProfitUSD.String())
	if l.onSolution != nil {
		l.onSolution(len(sol.Instructions), sol.EstimatedProfitUSD.String())
	}

	go l.runChain(sol)
}

func (l *Loop) runChain(sol *solverdomain.Solution) {
	ctx, cancel := context.WithTimeout(context.Background(), chainRunTimeout)
	defer cancel()
	if err := l.chain.Run(ctx, sol); err != nil {
		l.log.Error(ctx, "trading: chain run failed", "error", err)
	}
}

// startAmount computes a₀ = min(A₀, wallet_available(c₀)) per spec.md
// §4.4. A stale or untracked base wallet makes the whole tick
// unusable, and the caller skips it.
func (l *Loop) startAmount() (decimal.Decimal, bool) {
	key := walletdomain.Key{Type: walletdomain.WalletExchange, Currency: l.cfg.Currency}
	avail, ok := l.wallets.Available(key)
	if !ok {
		return decimal.Decimal{}, false
	}
	return decimal.Min(l.cfg.MaxAmountDecimal(), avail.ToDecimal()), true
}

// usdRate resolves currency's USD reference price off the best bid of
// its <currency>USD pair, if that pair is in the tracked universe.
func (l *Loop) usdRate(currency string) (decimal.Decimal, bool) {
	if currency == "USD" {
		return decimal.NewFromInt(1), true
	}
	bid, ok := l.books.BestBid("t" + currency + "USD")
	if !ok {
		return decimal.Decimal{}, false
	}
	return bid.Price.ToDecimal(), true
}
