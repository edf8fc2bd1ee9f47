// Package chain implements the Order-Chain Coordinator bounded context.
package chain

import (
	"context"

	chainapp "github.com/vantos/triarb/business/chain/app"
	chaindi "github.com/vantos/triarb/business/chain/di"
	ordersdi "github.com/vantos/triarb/business/orders/di"
	sessiondi "github.com/vantos/triarb/business/session/di"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers the Order-Chain Coordinator with the DI
// container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, chaindi.Coordinator, func(sr di.ServiceRegistry) *chainapp.Coordinator {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		conn := sessiondi.GetController(sr)
		orders := ordersdi.GetStore(sr)
		return chainapp.NewCoordinator(conn, orders, log, cfg.Trading.ChainStepTimeout())
	})
	return nil
}

// Startup is a no-op: the Coordinator is driven on demand by the
// trading loop, not on a timer of its own.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "chain module started")
	return nil
}
