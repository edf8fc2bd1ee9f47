// Package book implements the Order Book Store bounded context.
package book

import (
	"context"

	bookapp "github.com/vantos/triarb/business/book/app"
	bookdi "github.com/vantos/triarb/business/book/di"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/monolith"
)

// Module implements the book bounded context.
type Module struct{}

// RegisterServices registers the Order Book Store with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, bookdi.Store, func(sr di.ServiceRegistry) *bookapp.Store {
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		return bookapp.NewStore(log, nil)
	})
	return nil
}

// Startup starts the Order Book Store's 30s persistence loop.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	store := bookdi.GetStore(mono.Services())
	go store.RunPersistence(ctx)
	mono.Logger().Info(ctx, "book module started")
	return nil
}
