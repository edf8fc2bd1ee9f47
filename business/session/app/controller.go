// Package app hosts the Session Controller: the single websocket
// connection to the venue, its authentication handshake, inbound frame
// classification and dispatch, and the supervisory reconnect timer.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vantos/triarb/business/session/domain"
	"github.com/vantos/triarb/internal/apperror"
	"github.com/vantos/triarb/internal/circuitbreaker"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/wsconn"
)

// BookHandler consumes a decoded order book data frame.
type BookHandler func(ctx context.Context, symbol string, raw json.RawMessage)

// WalletHandler consumes a ws/wu wallet data frame.
type WalletHandler func(ctx context.Context, raw json.RawMessage)

// OrderHandler consumes an os/on/ou/oc order data frame.
type OrderHandler func(ctx context.Context, raw json.RawMessage)

// TradeHandler consumes a te/tu trade data frame.
type TradeHandler func(ctx context.Context, raw json.RawMessage)

// NotificationHandler consumes an n (notification) data frame.
type NotificationHandler func(ctx context.Context, n domain.DataFrame)

// reconnectSupervisionWindow bounds how long Connect waits for the
// venue's auth reply after opening the connection before it fails with
// an auth timeout.
const reconnectSupervisionWindow = 2500 * time.Millisecond

// Controller owns the single websocket connection to the venue: the
// auth handshake, channel subscriptions, maintenance-mode handling,
// and dispatch of decoded frames to the book/wallet/orders stores.
type Controller struct {
	conn   *wsconn.Client
	cb     *circuitbreaker.CircuitBreaker[struct{}]
	log    logger.LoggerInterface
	apiKey string
	apiSec string

	subs *domain.Registry

	expectedProtocol int
	fatal            chan error
	halted           atomic.Bool

	mu           sync.RWMutex
	capabilities domain.Capabilities
	authDone     chan struct{}
	authOK       bool
	protocol     int
	maintenance  atomic.Bool

	onBook   BookHandler
	onWallet WalletHandler
	onOrder  OrderHandler
	onTrade  TradeHandler
	onNotify NotificationHandler
	onInfo   func(ctx context.Context, code domain.InfoCode)
}

// NewController wires a Session Controller over an already-constructed
// wsconn.Client and Subscription Registry. expectedProtocol is the
// compiled-in API version (config.APIVersion); a venue "info" frame
// announcing a different version is a fatal, unconditional stop per
// spec.md §4.3/§7.
func NewController(conn *wsconn.Client, subs *domain.Registry, apiKey, apiSecret string, expectedProtocol int, log logger.LoggerInterface) *Controller {
	c := &Controller{
		conn:             conn,
		cb:               circuitbreaker.New[struct{}](circuitbreaker.DefaultConfig("session-ws")),
		log:              log,
		apiKey:           apiKey,
		apiSec:           apiSecret,
		subs:             subs,
		expectedProtocol: expectedProtocol,
		fatal:            make(chan error, 1),
		authDone:         make(chan struct{}),
	}
	conn.OnMessage(c.handleMessage)
	conn.OnStateChange(c.handleStateChange)
	return c
}

// FatalErr reports a fatal, unrecoverable condition — currently only a
// protocol-version mismatch. The engine must stop on receipt; no
// further outbound frames are sent once this channel has fired, since
// Send refuses once the controller is halted.
func (c *Controller) FatalErr() <-chan error {
	return c.fatal
}

func (c *Controller) raiseFatal(err error) {
	c.halted.Store(true)
	select {
	case c.fatal <- err:
	default:
	}
}

// OnBook, OnWallet, OnOrder, OnTrade, OnNotification register the
// dispatch targets for each data-frame class.
func (c *Controller) OnBook(h BookHandler)                 { c.onBook = h }
func (c *Controller) OnWallet(h WalletHandler)             { c.onWallet = h }
func (c *Controller) OnOrder(h OrderHandler)               { c.onOrder = h }
func (c *Controller) OnTrade(h TradeHandler)               { c.onTrade = h }
func (c *Controller) OnNotification(h NotificationHandler) { c.onNotify = h }

// OnInfo registers a handler invoked whenever the venue reports an info
// event — restart, maintenance-start, or maintenance-end — so the
// orchestrating module can unsubscribe/re-auth/resubscribe per
// spec.md's §4.3 reaction table.
func (c *Controller) OnInfo(h func(ctx context.Context, code domain.InfoCode)) { c.onInfo = h }

// Connect dials the venue, guarded by the circuit breaker, then runs
// the auth handshake and waits (with the supervisory window) for it to
// complete.
func (c *Controller) Connect(ctx context.Context) error {
	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.conn.Connect(ctx)
	})
	if err != nil {
		return apperror.New(apperror.CodeConnectionFailed, apperror.WithCause(err))
	}

	if err := c.authenticate(ctx); err != nil {
		return err
	}

	select {
	case <-c.authDone:
	case <-time.After(reconnectSupervisionWindow):
		return apperror.New(apperror.CodeAuthFailed, apperror.WithContext("auth handshake timed out"))
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.RLock()
	ok := c.authOK
	caps := c.capabilities
	c.mu.RUnlock()
	if !ok {
		return apperror.New(apperror.CodeAuthFailed)
	}
	if !caps.CanTrade() {
		return apperror.New(apperror.CodeCapabilityShortfall)
	}
	return nil
}

func (c *Controller) authenticate(ctx context.Context) error {
	payload, err := BuildAuthPayload(c.apiKey, c.apiSec)
	if err != nil {
		return apperror.New(apperror.CodeAuthFailed, apperror.WithCause(err))
	}
	if err := c.conn.SendJSON(ctx, payload); err != nil {
		return apperror.New(apperror.CodeSendFailed, apperror.WithCause(err))
	}
	return nil
}

// SubscribeBook requests a book channel for symbol.
func (c *Controller) SubscribeBook(ctx context.Context, symbol string, precision string, frequency string) error {
	c.subs.Add(symbol)
	req := map[string]any{
		"event":     "subscribe",
		"channel":   "book",
		"symbol":    symbol,
		"prec":      precision,
		"freq":      frequency,
		"len":       "25",
	}
	if err := c.conn.SendJSON(ctx, req); err != nil {
		return apperror.New(apperror.CodeSubscriptionFailed, apperror.WithCause(err), apperror.WithContext(symbol))
	}
	return nil
}

// handleStateChange is wired to wsconn's state-change callback; a drop
// to StateReconnecting invalidates the current auth state so the
// trading loop's guard conditions stop admitting new chains until
// re-authenticated.
func (c *Controller) handleStateChange(state wsconn.State, err error) {
	if state == wsconn.StateConnected {
		return
	}
	c.mu.Lock()
	c.authOK = false
	c.authDone = make(chan struct{})
	c.mu.Unlock()
}

// handleMessage classifies and dispatches one inbound websocket frame.
// The venue's wire protocol uses a JSON object for control events
// (info/subscribed/unsubscribed/auth/error) and a heterogeneous JSON
// array for data frames ([chan_id, msg_type, payload]).
func (c *Controller) handleMessage(ctx context.Context, raw []byte) {
	if len(raw) == 0 {
		return
	}
	switch raw[0] {
	case '{':
		c.handleControlFrame(ctx, raw)
	case '[':
		c.handleArrayFrame(ctx, raw)
	default:
		c.log.Warn(ctx, "session: unrecognized frame shape", "prefix", string(raw[0]))
	}
}

type controlEnvelope struct {
	Event   string `json:"event"`
	Version int    `json:"version"`
	Code    int    `json:"code"`
	Channel string `json:"channel"`
	Symbol  string `json:"symbol"`
	ChanID  int64  `json:"chanId"`
	Status  string `json:"status"`
	Msg     string `json:"msg"`
}

func (c *Controller) handleControlFrame(ctx context.Context, raw []byte) {
	var env controlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Warn(ctx, "session: malformed control frame", "error", err)
		return
	}

	switch env.Event {
	case "info":
		c.handleInfo(ctx, env)
	case "subscribed":
		c.subs.Confirm(env.Symbol, env.ChanID)
		c.log.Info(ctx, "session: subscribed", "symbol", env.Symbol, "chan_id", env.ChanID)
	case "unsubscribed":
		c.subs.Remove(env.ChanID)
	case "auth":
		c.handleAuth(ctx, env)
	case "error":
		c.log.Error(ctx, "session: venue error frame", "msg", env.Msg)
	}
}

func (c *Controller) handleInfo(ctx context.Context, env controlEnvelope) {
	switch domain.InfoCode(env.Code) {
	case domain.InfoMaintenanceStart:
		c.maintenance.Store(true)
		c.log.Warn(ctx, "session: entering maintenance mode")
	case domain.InfoMaintenanceEnd:
		c.maintenance.Store(false)
		c.log.Info(ctx, "session: maintenance mode ended")
	case domain.InfoRestart:
		c.log.Warn(ctx, "session: venue requested restart")
	}
	if c.onInfo != nil {
		c.onInfo(ctx, domain.InfoCode(env.Code))
	}
	if env.Version != 0 {
		c.mu.Lock()
		c.protocol = env.Version
		c.mu.Unlock()
		if err := c.CheckProtocolVersion(c.expectedProtocol); err != nil {
			c.log.Error(ctx, "session: fatal protocol version mismatch", "error", err)
			c.raiseFatal(err)
		}
	}
}

func (c *Controller) handleAuth(ctx context.Context, env controlEnvelope) {
	ok := env.Status == "OK"
	c.mu.Lock()
	c.authOK = ok
	if ok {
		// A real venue echoes granted capabilities in the auth frame;
		// treat any successful auth as fully capable absent a richer
		// payload to parse here.
		c.capabilities = domain.Capabilities{OrdersRead: true, OrdersWrite: true}
	}
	done := c.authDone
	c.mu.Unlock()
	select {
	case <-done:
	default:
		close(done)
	}
	if !ok {
		c.log.Error(ctx, "session: authentication failed", "msg", env.Msg)
	}
}

// IsMaintenanceMode reports whether the venue has signaled maintenance
// mode — one of the trading loop's guard conditions.
func (c *Controller) IsMaintenanceMode() bool {
	return c.maintenance.Load()
}

// IsConnected reports whether the underlying websocket is currently up.
func (c *Controller) IsConnected() bool {
	return c.conn.IsConnected()
}

// CanTrade reports whether the session is authenticated and holds both
// orders.read and orders.write capabilities — the trading loop's
// readiness guard.
func (c *Controller) CanTrade() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authOK && c.capabilities.CanTrade()
}

// ProtocolVersion returns the last announced wire protocol version.
func (c *Controller) ProtocolVersion() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.protocol
}

// CheckProtocolVersion fails fatally if the venue's announced protocol
// version does not match expected, per spec.md's unconditional-stop
// requirement on a protocol mismatch.
func (c *Controller) CheckProtocolVersion(expected int) error {
	v := c.ProtocolVersion()
	if v != 0 && v != expected {
		return apperror.New(apperror.CodeProtocolVersion,
			apperror.WithContext(fmt.Sprintf("got %d, want %d", v, expected)))
	}
	return nil
}

func (c *Controller) handleArrayFrame(ctx context.Context, raw []byte) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) < 2 {
		c.log.Warn(ctx, "session: malformed data frame", "error", err)
		return
	}

	var chanID int64
	if err := json.Unmarshal(parts[0], &chanID); err != nil {
		return
	}

	// A heartbeat or book-update frame carries the payload in parts[1]
	// directly; a tagged data frame carries a msg_type string in
	// parts[1] and the payload in parts[2].
	var tag string
	_ = json.Unmarshal(parts[1], &tag)
	if tag != "" && tag != "hb" && len(parts) < 3 {
		return
	}

	switch tag {
	case "hb":
		return
	case "ws", "wu":
		if c.onWallet != nil {
			c.onWallet(ctx, parts[2])
		}
	case "os", "on", "ou", "oc":
		if c.onOrder != nil {
			c.onOrder(ctx, parts[2])
		}
	case "te", "tu":
		if c.onTrade != nil {
			c.onTrade(ctx, parts[2])
		}
	case "n":
		if c.onNotify != nil {
			c.onNotify(ctx, domain.DataFrame{ChanID: chanID, MsgType: tag, Payload: parts[2]})
		}
	case "":
		// Raw book snapshot/delta: payload is parts[1].
		symbol, ok := c.subs.Dispatch(chanID)
		if !ok {
			return
		}
		if c.onBook != nil {
			c.onBook(ctx, symbol, parts[1])
		}
	}
}

// Send delivers an arbitrary outbound frame, e.g. an order submission
// or a wallet recompute ("calc") request. Refuses once the controller
// has halted on a fatal protocol-version mismatch.
func (c *Controller) Send(ctx context.Context, v any) error {
	if c.halted.Load() {
		return apperror.New(apperror.CodeProtocolVersion, apperror.WithContext("controller halted"))
	}
	if err := c.conn.SendJSON(ctx, v); err != nil {
		return apperror.New(apperror.CodeSendFailed, apperror.WithCause(err))
	}
	return nil
}

// Close releases the underlying connection.
func (c *Controller) Close() error {
	return c.conn.Close()
}
