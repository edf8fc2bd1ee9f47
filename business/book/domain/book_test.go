package domain_test

import (
	"testing"

	"github.com/vantos/triarb/business/book/domain"
	"github.com/vantos/triarb/internal/money"
)

var usd = money.NewCurrency("USD", 2)

func amt(v string) money.Amount {
	a, err := money.ParseString(usd, v)
	if err != nil {
		panic(err)
	}
	return a
}

func TestBook_ApplySnapshot_ThenRemoveDelta(t *testing.T) {
	b := domain.New("ETHUSD")
	b.ApplySnapshot([]domain.RawLevel{
		{Price: amt("100.10"), Count: 1, Amount: amt("-5")},
		{Price: amt("100.20"), Count: 2, Amount: amt("-10")},
	})

	b.ApplyDelta(domain.RawLevel{Price: amt("100.10"), Count: 0, Amount: amt("-1")})

	ask, ok := b.BestAsk()
	if !ok {
		t.Fatal("expected a best ask")
	}
	if ask.Price.ToDecimal().String() != "100.2" {
		t.Errorf("expected best ask price 100.2, got %s", ask.Price.ToDecimal())
	}
	if ask.Amount.ToDecimal().String() != "10" {
		t.Errorf("expected best ask amount 10, got %s", ask.Amount.ToDecimal())
	}

	snap := b.Snapshot()
	if len(snap.Asks) != 1 {
		t.Errorf("expected exactly one remaining ask level, got %d", len(snap.Asks))
	}
}

func TestBook_RemoveNonExistentPrice_IsNoOp(t *testing.T) {
	b := domain.New("ETHUSD")
	b.ApplySnapshot([]domain.RawLevel{
		{Price: amt("100.10"), Count: 1, Amount: amt("-5")},
	})
	b.ApplyDelta(domain.RawLevel{Price: amt("999"), Count: 0, Amount: amt("-1")})

	snap := b.Snapshot()
	if len(snap.Asks) != 1 {
		t.Errorf("expected no change, got %d ask levels", len(snap.Asks))
	}
}

func TestBook_BidsDescendingAsksAscending(t *testing.T) {
	b := domain.New("BTCUSD")
	b.ApplyDelta(domain.RawLevel{Price: amt("100"), Count: 1, Amount: amt("1")})
	b.ApplyDelta(domain.RawLevel{Price: amt("105"), Count: 1, Amount: amt("1")})
	b.ApplyDelta(domain.RawLevel{Price: amt("95"), Count: 1, Amount: amt("1")})
	b.ApplyDelta(domain.RawLevel{Price: amt("90"), Count: 1, Amount: amt("-1")})
	b.ApplyDelta(domain.RawLevel{Price: amt("110"), Count: 1, Amount: amt("-1")})

	snap := b.Snapshot()
	wantBids := []string{"105", "100", "95"}
	for i, p := range wantBids {
		if snap.Bids[i].Price.ToDecimal().String() != p {
			t.Errorf("bid[%d] = %s, want %s", i, snap.Bids[i].Price.ToDecimal(), p)
		}
	}
	wantAsks := []string{"90", "110"}
	for i, p := range wantAsks {
		if snap.Asks[i].Price.ToDecimal().String() != p {
			t.Errorf("ask[%d] = %s, want %s", i, snap.Asks[i].Price.ToDecimal(), p)
		}
	}
}

func TestBook_UpsertReplacesExistingLevel(t *testing.T) {
	b := domain.New("BTCUSD")
	b.ApplyDelta(domain.RawLevel{Price: amt("100"), Count: 1, Amount: amt("1")})
	b.ApplyDelta(domain.RawLevel{Price: amt("100"), Count: 3, Amount: amt("7")})

	bid, ok := b.BestBid()
	if !ok {
		t.Fatal("expected a best bid")
	}
	if bid.Count != 3 || bid.Amount.ToDecimal().String() != "7" {
		t.Errorf("expected upsert to replace level, got count=%d amount=%s", bid.Count, bid.Amount.ToDecimal())
	}
}

func TestSnapshot_IsCrossed(t *testing.T) {
	cases := []struct {
		name     string
		bidPrice string
		askPrice string
		want     bool
	}{
		{"normal_book", "99", "101", false},
		{"crossed_book", "101", "99", true},
		{"touching_book", "100", "100", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := domain.Snapshot{
				Bids: []domain.Level{{Price: amt(tc.bidPrice), Count: 1, Amount: amt("1")}},
				Asks: []domain.Level{{Price: amt(tc.askPrice), Count: 1, Amount: amt("1")}},
			}
			if got := snap.IsCrossed(); got != tc.want {
				t.Errorf("IsCrossed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLevel_ZeroValue(t *testing.T) {
	var l domain.Level
	if !l.Price.IsZero() {
		t.Error("zero-value level should have zero price")
	}
}
