// Package app hosts the Order-Chain Coordinator: it drives a solver
// Solution's instruction sequence to completion one step at a time,
// compensating already-submitted steps if any step fails.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	chaindomain "github.com/vantos/triarb/business/chain/domain"
	ordersapp "github.com/vantos/triarb/business/orders/app"
	ordersdomain "github.com/vantos/triarb/business/orders/domain"
	sessionapp "github.com/vantos/triarb/business/session/app"
	solverdomain "github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/apperror"
	"github.com/vantos/triarb/internal/logger"
)

// totalChainTimeout is the hard cap on a whole chain's wall-clock life,
// independent of any per-step deadline.
const totalChainTimeout = 60 * time.Second

// pollInterval is how often the coordinator checks the Order/Trade
// Store for a step's order-ack and fill progress.
const pollInterval = 50 * time.Millisecond

// Coordinator owns the at-most-one-active-chain invariant and the
// step-ordering/compensation logic that drives a chain to completion.
type Coordinator struct {
	conn   *sessionapp.Controller
	orders *ordersapp.Store
	log    logger.LoggerInterface

	stepTimeout time.Duration

	mu     sync.Mutex
	active *chaindomain.Chain

	onStep func(step, total int, symbol, state string)
	onDone func(profitUSD string, failed bool)
}

// OnStep registers a callback invoked on every step state transition.
// Intended for UI/observability wiring; nil is a safe no-op default.
func (co *Coordinator) OnStep(h func(step, total int, symbol, state string)) {
	co.onStep = h
}

// OnDone registers a callback invoked once a chain reaches a terminal
// state, reporting the solution's estimated USD profit and whether the
// chain failed.
func (co *Coordinator) OnDone(h func(profitUSD string, failed bool)) {
	co.onDone = h
}

func (co *Coordinator) notifyStep(step *chaindomain.Step, total int) {
	if co.onStep == nil {
		return
	}
	co.onStep(step.Index, total, step.Instruction.Symbol, stepStateName(step.State))
}

func stepStateName(s chaindomain.StepState) string {
	switch s {
	case chaindomain.StepPending:
		return "pending"
	case chaindomain.StepSubmitted:
		return "submitted"
	case chaindomain.StepAckReq:
		return "ack_req"
	case chaindomain.StepAckOrder:
		return "ack_order"
	case chaindomain.StepFilled:
		return "filled"
	case chaindomain.StepCanceled:
		return "canceled"
	case chaindomain.StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NewCoordinator wires a Coordinator over the Session Controller (for
// order submission/cancellation) and the Order/Trade Store (for
// ack/fill detection).
func NewCoordinator(conn *sessionapp.Controller, orders *ordersapp.Store, log logger.LoggerInterface, stepTimeout time.Duration) *Coordinator {
	return &Coordinator{conn: conn, orders: orders, log: log, stepTimeout: stepTimeout}
}

// IsActive reports whether a chain is currently running. The trading
// loop uses this as one of its admission guards: at most one chain may
// be active engine-wide.
func (co *Coordinator) IsActive() bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.active != nil
}

// Run drives sol's instruction sequence to completion or compensation,
// blocking until the chain reaches a terminal state. Step i+1 is only
// submitted once step i reaches Filled.
func (co *Coordinator) Run(ctx context.Context, sol *solverdomain.Solution) error {
	co.mu.Lock()
	if co.active != nil {
		co.mu.Unlock()
		return apperror.New(apperror.CodeChainAlreadyActive)
	}
	chain := chaindomain.NewChain(sol.Instructions, co.stepTimeout)
	chain.StartedAt = time.Now()
	chain.Deadline = chain.StartedAt.Add(totalChainTimeout)
	chain.State = chaindomain.ChainRunning
	co.active = chain
	co.mu.Unlock()

	defer func() {
		co.mu.Lock()
		co.active = nil
		co.mu.Unlock()
	}()

	runCtx, cancel := context.WithDeadline(ctx, chain.Deadline)
	defer cancel()

	total := len(chain.Steps)
	for _, step := range chain.Steps {
		if err := co.runStep(runCtx, step, total); err != nil {
			co.notifyStep(step, total)
			co.log.Error(runCtx, "chain: step failed, compensating",
				"step", step.Index, "symbol", step.Instruction.Symbol, "error", err)
			chain.State = chaindomain.ChainCompensating
			co.compensate(context.Background(), chain)
			chain.State = chaindomain.ChainFailed
			if co.onDone != nil {
				co.onDone(sol.EstimatedProfitUSD.String(), true)
			}
			return err
		}
		co.notifyStep(step, total)
	}
	chain.State = chaindomain.ChainDone
	if co.onDone != nil {
		co.onDone(sol.EstimatedProfitUSD.String(), false)
	}
	return nil
}

// runStep submits one instruction as a limit order and waits for it to
// reach Filled, timeout, or rejection.
func (co *Coordinator) runStep(ctx context.Context, step *chaindomain.Step, total int) error {
	clientID, clientDate, err := sessionapp.NewClientID()
	if err != nil {
		step.State = chaindomain.StepFailed
		return apperror.New(apperror.CodeChainStepFailed, apperror.WithCause(err))
	}
	step.ClientID = clientID
	step.ClientIDDate = clientDate
	step.SubmittedAt = time.Now()
	step.Deadline = step.SubmittedAt.Add(co.stepTimeout)

	amount := step.Instruction.ActionAmount.ToDecimal()
	price := step.Instruction.ActionPrice.ToDecimal()

	req := []any{0, "on", nil, map[string]any{
		"cid":    clientID,
		"symbol": step.Instruction.Symbol,
		"type":   "EXCHANGE LIMIT",
		"amount": amount.String(),
		"price":  price.String(),
	}}

	step.State = chaindomain.StepSubmitted
	co.notifyStep(step, total)
	if err := co.conn.Send(ctx, req); err != nil {
		step.State = chaindomain.StepFailed
		return apperror.New(apperror.CodeChainStepFailed, apperror.WithCause(err))
	}

	if err := co.awaitReqAck(ctx, step, total); err != nil {
		return err
	}

	return co.awaitFill(ctx, step, total)
}

// awaitReqAck polls the Order/Trade Store for the on-req notification
// the venue sends in response to the order submission, transitioning
// to AckReq on a SUCCESS ack and fast-failing on an ERROR ack instead
// of waiting out the full step timeout.
func (co *Coordinator) awaitReqAck(ctx context.Context, step *chaindomain.Step, total int) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(time.Until(step.Deadline))
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			step.State = chaindomain.StepFailed
			return apperror.New(apperror.CodeChainTotalTimeout)
		case <-deadline.C:
			step.State = chaindomain.StepFailed
			return apperror.New(apperror.CodeChainStepTimeout,
				apperror.WithContext(fmt.Sprintf("step %d (symbol %s) never acked", step.Index, step.Instruction.Symbol)))
		case <-ticker.C:
			n, ok := co.orders.NotificationForClientID(step.ClientID)
			if !ok {
				continue
			}
			if n.IsError() {
				step.State = chaindomain.StepFailed
				return apperror.New(apperror.CodeChainStepFailed,
					apperror.WithContext(fmt.Sprintf("on-req rejected for step %d: %s", step.Index, n.Text)))
			}
			step.State = chaindomain.StepAckReq
			co.notifyStep(step, total)
			return nil
		}
	}
}

// awaitFill polls the Order/Trade Store for the order acknowledgment
// (client_id -> order_id mapping) and subsequent cumulative fill
// against the step's target amount.
func (co *Coordinator) awaitFill(ctx context.Context, step *chaindomain.Step, total int) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(time.Until(step.Deadline))
	defer deadline.Stop()

	target := step.Instruction.ActionAmount.Abs().Raw().Int64()

	for {
		select {
		case <-ctx.Done():
			step.State = chaindomain.StepFailed
			return apperror.New(apperror.CodeChainTotalTimeout)
		case <-deadline.C:
			step.State = chaindomain.StepFailed
			return apperror.New(apperror.CodeChainStepTimeout,
				apperror.WithContext(fmt.Sprintf("step %d (symbol %s)", step.Index, step.Instruction.Symbol)))
		case <-ticker.C:
			if step.OrderID == 0 {
				o, ok := co.orders.ByClientID(step.ClientID)
				if !ok {
					continue
				}
				step.OrderID = o.ID
				step.State = chaindomain.StepAckOrder
				co.notifyStep(step, total)
			}

			filled := co.orders.CumulativeFilled(step.OrderID)
			if filled >= target {
				step.State = chaindomain.StepFilled
				co.notifyStep(step, total)
				return nil
			}
			if o, ok := co.orders.ByID(step.OrderID); ok && o.Status.IsTerminal() {
				if o.Status == ordersdomain.StatusCanceled || o.Status == ordersdomain.StatusPostOnlyCanceled {
					step.State = chaindomain.StepCanceled
					return apperror.New(apperror.CodeChainStepFailed,
						apperror.WithContext(fmt.Sprintf("order %d canceled by venue without full fill", step.OrderID)))
				}
				step.State = chaindomain.StepFailed
				return apperror.New(apperror.CodeChainStepFailed,
					apperror.WithContext(fmt.Sprintf("order %d closed without full fill", step.OrderID)))
			}
		}
	}
}

// compensate cancels every step still live enough to matter, preferring
// cancellation by venue order id and falling back to the client id/date
// pair for steps that never reached an acknowledged order.
func (co *Coordinator) compensate(ctx context.Context, chain *chaindomain.Chain) {
	for _, step := range chain.CompensationTargets() {
		var req []any
		if step.OrderID != 0 {
			req = []any{0, "oc", nil, map[string]any{"id": step.OrderID}}
		} else {
			req = []any{0, "oc", nil, map[string]any{
				"cid":      step.ClientID,
				"cid_date": step.ClientIDDate,
			}}
		}
		if err := co.conn.Send(ctx, req); err != nil {
			co.log.Error(ctx, "chain: compensation cancel failed", "step", step.Index, "error", err)
			continue
		}
		step.State = chaindomain.StepCanceled
	}
}
