package infra_test

import (
	"encoding/json"
	"testing"

	"github.com/vantos/triarb/business/orders/infra"
)

// TestDecodeNotification_ExtractsClientIDFromNestedOrderInfo covers
// review comments (a)/(b): the Order-Chain Coordinator matches an
// on-req ack back to its step by client id, which the venue echoes
// inside the notification's nested order-info array rather than at
// the top level.
func TestDecodeNotification_ExtractsClientIDFromNestedOrderInfo(t *testing.T) {
	raw := json.RawMessage(`[
		1234567890, "on-req", null, null,
		[null, null, 555, "tBTCUSD", null, null, 0.01, 0.01, "EXCHANGE LIMIT", null, null, null, null, null, 50000],
		null, "SUCCESS", "Submitted for cancellation; waiting for confirmation."
	]`)

	n, err := infra.DecodeNotification(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if n.Type != "on-req" {
		t.Errorf("expected type on-req, got %q", n.Type)
	}
	if n.ClientID != 555 {
		t.Errorf("expected client id 555, got %d", n.ClientID)
	}
	if n.Status != "SUCCESS" {
		t.Errorf("expected status SUCCESS, got %q", n.Status)
	}
	if n.IsError() {
		t.Error("expected IsError false for a SUCCESS notification")
	}
}

func TestDecodeNotification_ErrorStatusReportsIsError(t *testing.T) {
	raw := json.RawMessage(`[
		1234567890, "on-req", null, null,
		[null, null, 556, "tBTCUSD", null, null, 0.01, 0.01, "EXCHANGE LIMIT", null, null, null, null, null, 50000],
		null, "ERROR", "Invalid order: minimum size violation"
	]`)

	n, err := infra.DecodeNotification(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !n.IsError() {
		t.Error("expected IsError true for an ERROR notification")
	}
	if n.ClientID != 556 {
		t.Errorf("expected client id 556, got %d", n.ClientID)
	}
}
