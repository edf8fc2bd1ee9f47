package money_test

import (
	"math/big"
	"testing"

	"github.com/vantos/triarb/internal/money"
	"github.com/shopspring/decimal"
)

var (
	btc = money.NewCurrency("BTC", 8)
	usd = money.NewCurrency("USD", 2)
)

func TestAmount_Basic(t *testing.T) {
	oneBTC := money.NewAmount(btc, big.NewInt(1e8))

	if oneBTC.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !oneBTC.ToDecimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneBTC.ToDecimal())
	}
	if oneBTC.String() != "1 BTC" {
		t.Errorf("expected '1 BTC', got %q", oneBTC.String())
	}
}

func TestAmount_Add(t *testing.T) {
	one := money.NewAmount(btc, big.NewInt(1e8))
	two := money.NewAmount(btc, big.NewInt(2e8))

	sum, err := one.Add(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.ToDecimal().Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected 3, got %s", sum.ToDecimal())
	}
}

func TestAmount_SubCanGoNegative(t *testing.T) {
	one := money.NewAmount(btc, big.NewInt(1e8))
	two := money.NewAmount(btc, big.NewInt(2e8))

	diff, err := one.Sub(two)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsNegative() {
		t.Errorf("expected negative result, got %s", diff)
	}
	if !diff.ToDecimal().Equal(decimal.NewFromInt(-1)) {
		t.Errorf("expected -1, got %s", diff.ToDecimal())
	}
}

func TestAmount_CurrencyMismatch(t *testing.T) {
	oneBTC := money.NewAmount(btc, big.NewInt(1e8))
	oneUSD := money.NewAmount(usd, big.NewInt(1e2))

	if _, err := oneBTC.Add(oneUSD); err == nil {
		t.Error("expected currency mismatch error")
	}
}

func TestAmount_Neg(t *testing.T) {
	cases := []struct {
		name string
		in   int64
		want int
	}{
		{"positive_to_negative", 5e8, -1},
		{"negative_to_positive", -5e8, 1},
		{"zero_stays_zero", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := money.NewAmount(btc, big.NewInt(tc.in))
			if got := a.Neg().Sign(); got != tc.want {
				t.Errorf("Neg().Sign() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAmount_ParseString_RoundTrip(t *testing.T) {
	a, err := money.ParseString(btc, "0.00012345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ToDecimal().String() != "0.00012345" {
		t.Errorf("round-trip mismatch: got %s", a.ToDecimal())
	}
}

func TestAmount_ParseString_TooManyDecimals(t *testing.T) {
	_, err := money.ParseString(btc, "0.000000001")
	if err == nil {
		t.Error("expected ErrTooManyDecimals for sub-satoshi value")
	}
}

func TestPrice_Convert(t *testing.T) {
	pair := money.NewPair(btc, usd)
	price := money.NewPriceNow(pair, decimal.RequireFromString("50000"))

	oneBTC := money.NewAmount(btc, big.NewInt(1e8))
	usdAmount, err := price.Convert(oneBTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usdAmount.ToDecimal().Equal(decimal.RequireFromString("50000")) {
		t.Errorf("expected 50000 USD, got %s", usdAmount.ToDecimal())
	}
}

func TestPrice_Invert(t *testing.T) {
	pair := money.NewPair(btc, usd)
	price := money.NewPriceNow(pair, decimal.RequireFromString("50000"))

	inverted := price.Invert()
	if !inverted.Pair().Equals(money.NewPair(usd, btc)) {
		t.Errorf("expected inverted pair USD/BTC, got %s", inverted.Pair())
	}
	got := inverted.Rate()
	want := decimal.RequireFromString("0.00002")
	if got.Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.0000001")) {
		t.Errorf("expected ~0.00002, got %s", got)
	}
}

func TestRoundSignificant(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		digits int32
		want   string
	}{
		{"five_sig_figs_large", "123456.789", 5, "123460"},
		{"five_sig_figs_small", "0.0001234567", 5, "0.00012346"},
		{"already_short", "12.3", 5, "12.3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := decimal.RequireFromString(tc.in)
			got := money.RoundSignificant(in, tc.digits)
			want := decimal.RequireFromString(tc.want)
			if !got.Equal(want) {
				t.Errorf("RoundSignificant(%s, %d) = %s, want %s", tc.in, tc.digits, got, want)
			}
		})
	}
}
