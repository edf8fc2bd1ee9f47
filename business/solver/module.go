// Package solver implements the Cycle-Path Algorithm bounded context.
package solver

import (
	"context"

	solverapp "github.com/vantos/triarb/business/solver/app"
	solverdi "github.com/vantos/triarb/business/solver/di"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/monolith"
)

// Module implements the solver bounded context.
type Module struct{}

// RegisterServices registers the Solver with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, solverdi.Solver, func(sr di.ServiceRegistry) *solverapp.Solver {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return solverapp.New(log)
	})
	return nil
}

// Startup is a no-op: the solver is invoked synchronously by the
// trading loop, it owns no background goroutines of its own.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "solver module started")
	return nil
}
