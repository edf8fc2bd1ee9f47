package domain_test

import (
	"testing"

	"github.com/vantos/triarb/business/session/domain"
)

// TestRegistry_Reset_ClearsConfirmedAndPendingState covers review
// comment (e): the registry must forget every prior subscription
// before resubscribing after a reconnect, since the venue assigns
// fresh chan_ids on every new connection.
func TestRegistry_Reset_ClearsConfirmedAndPendingState(t *testing.T) {
	r := domain.NewRegistry(2)
	r.Add("tBTCUSD")
	r.Confirm("tBTCUSD", 5)
	r.Add("tETHUSD")

	if got := r.ConfirmedCount(); got != 1 {
		t.Fatalf("expected 1 confirmed subscription before reset, got %d", got)
	}

	r.Reset()

	if got := r.ConfirmedCount(); got != 0 {
		t.Fatalf("expected 0 confirmed subscriptions after reset, got %d", got)
	}
	if symbol, ok := r.Dispatch(5); ok {
		t.Fatalf("expected chan_id 5 to be forgotten after reset, got symbol %q", symbol)
	}
	if r.AllBooksReady() {
		t.Fatal("expected AllBooksReady to report false immediately after reset")
	}
}
