package app

import (
	"context"
	"io"
	"testing"
	"time"

	chaindomain "github.com/vantos/triarb/business/chain/domain"
	ordersapp "github.com/vantos/triarb/business/orders/app"
	ordersdomain "github.com/vantos/triarb/business/orders/domain"
	solverdomain "github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testStep(clientID int64) *chaindomain.Step {
	return &chaindomain.Step{
		Index:        0,
		Instruction:  solverdomain.Instruction{Symbol: "BTCUSD"},
		State:        chaindomain.StepSubmitted,
		ClientID:     clientID,
		ClientIDDate: "2026-08-01",
		Deadline:     time.Now().Add(time.Second),
	}
}

// TestCoordinator_AwaitReqAck_SuccessTransitionsToAckReq covers review
// comment (a): a SUCCESS on-req notification must move the step to
// AckReq rather than leaving ack detection entirely to order/fill
// polling.
func TestCoordinator_AwaitReqAck_SuccessTransitionsToAckReq(t *testing.T) {
	orders := ordersapp.NewStore()
	co := NewCoordinator(nil, orders, testLogger(), time.Second)
	step := testStep(42)

	orders.RecordNotification(ordersdomain.Notification{Type: "on-req", ClientID: 42, Status: "SUCCESS"})

	if err := co.awaitReqAck(context.Background(), step, 1); err != nil {
		t.Fatalf("expected no error on a SUCCESS ack, got %v", err)
	}
	if step.State != chaindomain.StepAckReq {
		t.Fatalf("expected step state AckReq, got %v", step.State)
	}
}

// TestCoordinator_AwaitReqAck_ErrorFastFails covers review comment (a):
// an ERROR on-req notification must fail the step immediately instead
// of waiting out the full step timeout.
func TestCoordinator_AwaitReqAck_ErrorFastFails(t *testing.T) {
	orders := ordersapp.NewStore()
	co := NewCoordinator(nil, orders, testLogger(), 5*time.Second)
	step := testStep(7)
	step.Deadline = time.Now().Add(5 * time.Second)

	orders.RecordNotification(ordersdomain.Notification{Type: "on-req", ClientID: 7, Status: "ERROR", Text: "insufficient balance"})

	start := time.Now()
	err := co.awaitReqAck(context.Background(), step, 1)
	if err == nil {
		t.Fatal("expected an error on an ERROR ack")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected a fast failure, took %v", elapsed)
	}
	if step.State != chaindomain.StepFailed {
		t.Fatalf("expected step state Failed, got %v", step.State)
	}
}

// TestCoordinator_AwaitFill_VenueCancelMapsToStepCanceled covers review
// comment (f): a venue-initiated CANCELED status must be reported as
// StepCanceled, distinct from StepFailed.
func TestCoordinator_AwaitFill_VenueCancelMapsToStepCanceled(t *testing.T) {
	orders := ordersapp.NewStore()
	co := NewCoordinator(nil, orders, testLogger(), time.Second)
	step := testStep(99)
	step.Instruction.ActionAmount = amount(t, "1")
	step.Deadline = time.Now().Add(time.Second)

	orders.Upsert(ordersdomain.Order{ID: 1001, ClientID: 99, Status: ordersdomain.StatusCanceled})

	err := co.awaitFill(context.Background(), step, 1)
	if err == nil {
		t.Fatal("expected an error when the venue cancels the order")
	}
	if step.State != chaindomain.StepCanceled {
		t.Fatalf("expected step state Canceled, got %v", step.State)
	}
}

// TestCoordinator_AwaitFill_OtherTerminalStatusMapsToStepFailed ensures
// a non-cancel terminal status (e.g. fully executed below target, which
// should not normally happen, or a generic closed state) still reports
// StepFailed rather than StepCanceled.
func TestCoordinator_AwaitFill_OtherTerminalStatusMapsToStepFailed(t *testing.T) {
	orders := ordersapp.NewStore()
	co := NewCoordinator(nil, orders, testLogger(), time.Second)
	step := testStep(100)
	step.Instruction.ActionAmount = amount(t, "1")
	step.Deadline = time.Now().Add(time.Second)

	orders.Upsert(ordersdomain.Order{ID: 1002, ClientID: 100, Status: ordersdomain.StatusExecuted})

	err := co.awaitFill(context.Background(), step, 1)
	if err == nil {
		t.Fatal("expected an error when the order closes without a full fill")
	}
	if step.State != chaindomain.StepFailed {
		t.Fatalf("expected step state Failed, got %v", step.State)
	}
}

func amount(t *testing.T, v string) money.Amount {
	t.Helper()
	usd := money.NewCurrency("USD", 2)
	a, err := money.ParseString(usd, v)
	if err != nil {
		t.Fatalf("failed to parse test amount: %v", err)
	}
	return a
}
