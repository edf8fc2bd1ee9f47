// Package orders implements the Order/Trade Store bounded context.
package orders

import (
	"context"
	"encoding/json"

	ordersapp "github.com/vantos/triarb/business/orders/app"
	ordersdi "github.com/vantos/triarb/business/orders/di"
	ordersinfra "github.com/vantos/triarb/business/orders/infra"
	sessiondi "github.com/vantos/triarb/business/session/di"
	sessiondomain "github.com/vantos/triarb/business/session/domain"
	solverapp "github.com/vantos/triarb/business/solver/app"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/monolith"
	"github.com/vantos/triarb/internal/money"
)

// Module implements the orders bounded context.
type Module struct{}

// RegisterServices registers the Order/Trade Store with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ordersdi.Store, func(sr di.ServiceRegistry) *ordersapp.Store {
		return ordersapp.NewStore()
	})
	return nil
}

// Startup wires the store to the Session Controller's order and trade
// data frames.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	store := ordersdi.GetStore(mono.Services())
	conn := sessiondi.GetController(mono.Services())
	currencies := mono.Currencies()
	log := mono.Logger()

	currencyOf := func(symbol string) (base, quote money.Currency, ok bool) {
		baseCode, quoteCode, ok := solverapp.DefaultSplitSymbol(symbol)
		if !ok {
			return money.Currency{}, money.Currency{}, false
		}
		base, ok1 := currencies.Get(baseCode)
		quote, ok2 := currencies.Get(quoteCode)
		return base, quote, ok1 && ok2
	}

	conn.OnOrder(func(ctx context.Context, raw json.RawMessage) {
		o, err := ordersinfra.DecodeOrder(raw, currencyOf)
		if err != nil {
			log.Warn(ctx, "orders: malformed order frame", "error", err)
			return
		}
		store.Upsert(o)
	})

	conn.OnTrade(func(ctx context.Context, raw json.RawMessage) {
		t, err := ordersinfra.DecodeTrade(raw, currencyOf)
		if err != nil {
			log.Warn(ctx, "orders: malformed trade frame", "error", err)
			return
		}
		store.RecordTrade(t)
	})

	conn.OnNotification(func(ctx context.Context, df sessiondomain.DataFrame) {
		n, err := ordersinfra.DecodeNotification(df.Payload)
		if err != nil {
			log.Warn(ctx, "orders: malformed notification frame", "error", err)
			return
		}
		store.RecordNotification(n)
	})

	log.Info(ctx, "orders module started")
	return nil
}
