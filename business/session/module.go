// Package session implements the Session Controller bounded context:
// the single websocket connection to the venue, authentication, and
// inbound frame dispatch to the book/wallet/orders stores.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	bookdi "github.com/vantos/triarb/business/book/di"
	bookdomain "github.com/vantos/triarb/business/book/domain"
	sessionapp "github.com/vantos/triarb/business/session/app"
	sessiondi "github.com/vantos/triarb/business/session/di"
	sessiondomain "github.com/vantos/triarb/business/session/domain"
	solverapp "github.com/vantos/triarb/business/solver/app"
	walletdi "github.com/vantos/triarb/business/wallet/di"
	walletdomain "github.com/vantos/triarb/business/wallet/domain"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/di"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/monolith"
	"github.com/vantos/triarb/internal/money"
	"github.com/vantos/triarb/internal/wsconn"
)

// Module implements the session bounded context.
type Module struct{}

// RegisterServices registers the Subscription Registry and Session
// Controller with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, sessiondi.SubscriptionRegistry, func(sr di.ServiceRegistry) *sessiondomain.Registry {
		cfg := di.Resolve[*config.Config](sr, "config")
		return sessiondomain.NewRegistry(len(cfg.Trading.SymbolUniverse))
	})

	di.RegisterToken(c, sessiondi.Controller, func(sr di.ServiceRegistry) *sessionapp.Controller {
		cfg := di.Resolve[*config.Config](sr, "config")
		log := di.Resolve[logger.LoggerInterface](sr, "logger")
		subs := sessiondi.GetSubscriptionRegistry(sr)

		wsCfg := wsconn.DefaultConfig(cfg.Venue.WebSocketURL, "triarb-session")
		wsCfg.MaxReconnects = cfg.Venue.MaxReconnects
		wsCfg.InitialBackoff = cfg.Venue.InitialBackoff
		wsCfg.MaxBackoff = cfg.Venue.MaxBackoff

		conn, err := wsconn.New(wsCfg)
		if err != nil {
			panic("failed to create session websocket client: " + err.Error())
		}
		return sessionapp.NewController(conn, subs, cfg.Venue.APIKey, cfg.Venue.APISecret, config.APIVersion, log)
	})

	return nil
}

// Startup connects the Session Controller, wires its data-frame
// handlers to the book and wallet stores, subscribes every required
// book channel, and starts the supervisory reconnect timer.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()
	conn := sessiondi.GetController(mono.Services())
	bookStore := bookdi.GetStore(mono.Services())
	walletStore := walletdi.GetStore(mono.Services())

	currencies := mono.Currencies()

	conn.OnBook(func(ctx context.Context, symbol string, raw json.RawMessage) {
		if err := dispatchBookFrame(bookStore, currencies, symbol, raw); err != nil {
			log.Warn(ctx, "session: malformed book frame", "symbol", symbol, "error", err)
		}
	})

	conn.OnWallet(func(ctx context.Context, raw json.RawMessage) {
		key, needsRecompute, err := dispatchWalletFrame(walletStore, currencies, raw)
		if err != nil {
			log.Warn(ctx, "session: malformed wallet frame", "error", err)
			return
		}
		if !needsRecompute {
			return
		}
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := walletStore.RequestRecompute(rctx, []walletdomain.Key{key}); err != nil {
				log.Warn(rctx, "session: wallet recompute request failed", "key", key, "error", err)
			}
		}()
	})

	resubscribe := func(ctx context.Context, c *sessionapp.Controller) error {
		for _, symbol := range cfg.Trading.SymbolUniverse {
			if err := c.SubscribeBook(ctx, symbol, "P0", "F1"); err != nil {
				return err
			}
		}
		return nil
	}

	if err := conn.Connect(ctx); err != nil {
		log.Warn(ctx, "session: initial connect failed, supervisor will retry", "error", err)
	} else if err := resubscribe(ctx, conn); err != nil {
		log.Warn(ctx, "session: initial subscribe failed", "error", err)
	}

	go sessionapp.Supervise(ctx, conn, resubscribe)

	log.Info(ctx, "session module started")
	return nil
}

func dispatchBookFrame(store interface {
	ApplySnapshot(symbol string, levels []bookdomain.RawLevel)
	ApplyDelta(symbol string, raw bookdomain.RawLevel)
}, currencies *money.Registry, symbol string, raw json.RawMessage) error {
	baseCode, quoteCode, ok := solverapp.DefaultSplitSymbol(symbol)
	if !ok {
		return fmt.Errorf("cannot split symbol %q", symbol)
	}
	base, ok := currencies.Get(baseCode)
	if !ok {
		return fmt.Errorf("unregistered base currency %q", baseCode)
	}
	quote, ok := currencies.Get(quoteCode)
	if !ok {
		return fmt.Errorf("unregistered quote currency %q", quoteCode)
	}

	var asSnapshot [][3]float64
	if err := json.Unmarshal(raw, &asSnapshot); err == nil && len(asSnapshot) > 0 {
		levels := make([]bookdomain.RawLevel, 0, len(asSnapshot))
		for _, row := range asSnapshot {
			lvl, err := rawLevelFromFloats(base, quote, row)
			if err != nil {
				return err
			}
			levels = append(levels, lvl)
		}
		store.ApplySnapshot(symbol, levels)
		return nil
	}

	var asDelta [3]float64
	if err := json.Unmarshal(raw, &asDelta); err != nil {
		return fmt.Errorf("unrecognized book payload shape: %w", err)
	}
	lvl, err := rawLevelFromFloats(base, quote, asDelta)
	if err != nil {
		return err
	}
	store.ApplyDelta(symbol, lvl)
	return nil
}

// rawLevelFromFloats parses a (price, count, amount) wire row. Price
// is denominated in the pair's quote currency; amount is denominated
// in the base currency, per standard order book semantics.
func rawLevelFromFloats(base, quote money.Currency, row [3]float64) (bookdomain.RawLevel, error) {
	price, err := money.ParseDecimal(quote, decimal.NewFromFloat(row[0]))
	if err != nil {
		return bookdomain.RawLevel{}, err
	}
	amount, err := money.ParseDecimal(base, decimal.NewFromFloat(row[2]))
	if err != nil {
		return bookdomain.RawLevel{}, err
	}
	return bookdomain.RawLevel{Price: price, Count: int(row[1]), Amount: amount}, nil
}

// dispatchWalletFrame applies one ws/wu wallet frame to store and
// reports whether the venue sent a null balance_available — per
// spec.md §3/§9(c), that means the wallet is stale and the core must
// request a recompute for it.
func dispatchWalletFrame(store interface {
	Update(key walletdomain.Key, balance walletdomain.Balance)
}, currencies *money.Registry, raw json.RawMessage) (key walletdomain.Key, needsRecompute bool, err error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) < 3 {
		return walletdomain.Key{}, false, fmt.Errorf("malformed wallet array")
	}
	var walletType, currencyCode string
	var balance, available float64
	haveAvailable := len(fields) > 4 && string(fields[4]) != "null"
	_ = json.Unmarshal(fields[0], &walletType)
	_ = json.Unmarshal(fields[1], &currencyCode)
	_ = json.Unmarshal(fields[2], &balance)
	if haveAvailable {
		_ = json.Unmarshal(fields[4], &available)
	}

	c, ok := currencies.Get(currencyCode)
	if !ok {
		return walletdomain.Key{}, false, fmt.Errorf("unregistered currency %q", currencyCode)
	}

	total, err := money.ParseDecimal(c, decimal.NewFromFloat(balance))
	if err != nil {
		return walletdomain.Key{}, false, err
	}

	key = walletdomain.Key{Type: walletdomain.WalletType(walletType), Currency: currencyCode}
	b := walletdomain.Balance{Total: total}
	if haveAvailable {
		avail, err := money.ParseDecimal(c, decimal.NewFromFloat(available))
		if err != nil {
			return walletdomain.Key{}, false, err
		}
		b.Available = &avail
	}
	store.Update(key, b)
	return key, !haveAvailable, nil
}
