// Package trading implements the Trading Loop bounded context: it ties
// the session, book, solver, and chain contexts together into the
// fixed-interval search-and-trade cadence.
package trading

import (
	"context"
	"time"

	bookdi "github.com/vantos/triarb/business/book/di"
	chaindi "github.com/vantos/triarb/business/chain/di"
	sessiondi "github.com/vantos/triarb/business/session/di"
	solverdi "github.com/vantos/triarb/business/solver/di"
	tradingapp "github.com/vantos/triarb/business/trading/app"
	tradingdi "github.com/vantos/triarb/business/trading/di"
	walletdi "github.com/vantos/triarb/business/wallet/di"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
	"github.com/vantos/triarb/internal/monolith"
)

// Module implements the trading bounded context.
type Module struct{}

// RegisterServices registers the Trading Loop with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, tradingdi.Loop, func(sr di.ServiceRegistry) *tradingapp.Loop {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		currencies := di.Resolve[*money.Registry](sr, "currencies")
		return tradingapp.NewLoop(
			&cfg.Trading,
			sessiondi.GetController(sr),
			sessiondi.GetSubscriptionRegistry(sr),
			bookdi.GetStore(sr),
			solverdi.GetSolver(sr),
			chaindi.GetCoordinator(sr),
			walletdi.GetStore(sr),
			currencies,
			log,
		)
	})
	return nil
}

// Startup starts the Trading Loop's background ticker after a short
// grace period, giving the session time to authenticate and subscribe
// before the first tick's guard conditions are evaluated.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	loop := tradingdi.GetLoop(mono.Services())
	log := mono.Logger()

	go func() {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}
		loop.Run(ctx)
	}()

	log.Info(ctx, "trading module started")
	return nil
}
