// Package wallet implements the Wallet Store bounded context.
package wallet

import (
	"context"
	"fmt"

	walletapp "github.com/vantos/triarb/business/wallet/app"
	walletdi "github.com/vantos/triarb/business/wallet/di"
	"github.com/vantos/triarb/business/wallet/domain"
	sessionapp "github.com/vantos/triarb/business/session/app"
	sessiondi "github.com/vantos/triarb/business/session/di"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/monolith"
)

// Module implements the wallet bounded context.
type Module struct{}

// sessionRecompute adapts the Session Controller's outbound channel to
// the wallet Store's RecomputeRequester port by shaping a "calc"
// balance recompute frame (spec.md §6).
type sessionRecompute struct {
	conn *sessionapp.Controller
}

func (r sessionRecompute) RequestRecompute(ctx context.Context, keys []domain.Key) error {
	filters := make([][]string, 0, len(keys))
	for _, k := range keys {
		filters = append(filters, []string{fmt.Sprintf("wallet_%s_%s", k.Type, k.Currency)})
	}
	return r.conn.Send(ctx, []any{0, "calc", nil, filters})
}

// RegisterServices registers the Wallet Store with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, walletdi.Store, func(sr di.ServiceRegistry) *walletapp.Store {
		_ = di.Resolve[logger.LoggerInterface](sr, "logger")
		conn := sessiondi.GetController(sr)
		return walletapp.NewStore(sessionRecompute{conn: conn})
	})
	return nil
}

// Startup is a no-op: the wallet store is purely reactive to ws/wu
// frames dispatched by the session module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "wallet module started")
	return nil
}
