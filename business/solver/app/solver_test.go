package app_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantos/triarb/business/solver/app"
	"github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

var (
	usd = money.NewCurrency("USD", 2)
	btc = money.NewCurrency("BTC", 8)
	eth = money.NewCurrency("ETH", 8)
)

// triangleGraph builds USD/BTC/ETH/USD edges with tops priced so the
// round trip gains about 1.04% gross (15.08 * 2010 / 30000) and about
// 0.43% after three 0.2% taker fees, per spec.md §8 scenario 2.
func triangleGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph([]money.Currency{usd, btc, eth})

	dec := func(s string) decimal.Decimal {
		d, err := decimal.NewFromString(s)
		if err != nil {
			t.Fatalf("bad decimal %q: %v", s, err)
		}
		return d
	}

	// USD -> BTC: buy BTC with USD at ask 30000, depth 10 BTC.
	g.AddEdge(domain.Edge{
		From: usd, To: btc, Symbol: "BTCUSD", IsBuy: true,
		Price: dec("30000"), Rate: decimal.NewFromInt(1).Div(dec("30000")),
		Cap: dec("30000").Mul(dec("10")), SeenAt: time.Now(),
	})
	// BTC -> ETH: sell BTC for ETH at bid 15.08 (ETH per BTC), depth 10 BTC.
	g.AddEdge(domain.Edge{
		From: btc, To: eth, Symbol: "ETHBTC", IsBuy: false,
		Price: dec("15.08"), Rate: dec("15.08"),
		Cap: dec("10"), SeenAt: time.Now(),
	})
	// ETH -> USD: sell ETH for USD at bid 2010, depth 200 ETH.
	g.AddEdge(domain.Edge{
		From: eth, To: usd, Symbol: "ETHUSD", IsBuy: false,
		Price: dec("2010"), Rate: dec("2010"),
		Cap: dec("200"), SeenAt: time.Now(),
	})
	return g
}

func minOrderSizeAlwaysOK(string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func usdRateIdentity(currency string) (decimal.Decimal, bool) {
	if currency == "USD" {
		return decimal.NewFromInt(1), true
	}
	return decimal.Decimal{}, false
}

func TestSolver_TriangularProfit_AdmissibleBelowThreshold(t *testing.T) {
	g := triangleGraph(t)
	s := app.New(testLogger())

	params := app.Params{
		BaseCurrency:  "USD",
		StartAmount:   decimal.NewFromInt(1000),
		MinPathLength: 3,
		MaxPathLength: 3,
		MinProfitUSD:  decimal.NewFromInt(1),
		TakerFee:      decimal.NewFromFloat(0.002),
		MinOrderSize:  minOrderSizeAlwaysOK,
		USDRate:       usdRateIdentity,
	}

	sol, err := s.Solve(context.Background(), g, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol == nil {
		t.Fatal("expected an admissible cycle, got none")
	}
	if len(sol.Instructions) != 3 {
		t.Fatalf("expected a 3-hop cycle, got %d", len(sol.Instructions))
	}
	if !sol.EstimatedProfitBase.IsPositive() {
		t.Errorf("expected positive profit_base, got %s", sol.EstimatedProfitBase)
	}
	if !sol.EstimatedProfitUSD.IsPositive() {
		t.Errorf("expected positive profit_usd, got %s", sol.EstimatedProfitUSD)
	}
}

func TestSolver_TriangularProfit_EmptyWhenThresholdTooHigh(t *testing.T) {
	g := triangleGraph(t)
	s := app.New(testLogger())

	params := app.Params{
		BaseCurrency:  "USD",
		StartAmount:   decimal.NewFromInt(1000),
		MinPathLength: 3,
		MaxPathLength: 3,
		MinProfitUSD:  decimal.NewFromInt(100),
		TakerFee:      decimal.NewFromFloat(0.002),
		MinOrderSize:  minOrderSizeAlwaysOK,
		USDRate:       usdRateIdentity,
	}

	sol, err := s.Solve(context.Background(), g, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol != nil {
		t.Fatalf("expected no admissible cycle with minPathProfitUsd=100, got profit_usd=%s", sol.EstimatedProfitUSD)
	}
}

func TestSolver_MinSizeGate_EmptyWhenHopBelowMinimum(t *testing.T) {
	g := triangleGraph(t)
	s := app.New(testLogger())

	minSizeBTC := func(currency string) (decimal.Decimal, error) {
		if currency == "BTC" {
			return decimal.NewFromFloat(0.002), nil
		}
		return decimal.Zero, nil
	}

	params := app.Params{
		BaseCurrency:  "USD",
		StartAmount:   decimal.NewFromFloat(0.0001 * 30000), // forces the BTC leg below minOrderSize
		MinPathLength: 3,
		MaxPathLength: 3,
		MinProfitUSD:  decimal.Zero,
		TakerFee:      decimal.NewFromFloat(0.002),
		MinOrderSize:  minSizeBTC,
		USDRate:       usdRateIdentity,
	}

	sol, err := s.Solve(context.Background(), g, params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol != nil {
		t.Fatalf("expected empty result when a hop's amount is below the per-currency minimum, got %+v", sol)
	}
}

func TestSolver_RespectsWallClockBudget(t *testing.T) {
	g := triangleGraph(t)
	s := app.New(testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	params := app.Params{
		BaseCurrency:  "USD",
		StartAmount:   decimal.NewFromInt(1000),
		MinPathLength: 3,
		MaxPathLength: 3,
		MinProfitUSD:  decimal.Zero,
		TakerFee:      decimal.NewFromFloat(0.002),
		MinOrderSize:  minOrderSizeAlwaysOK,
		USDRate:       usdRateIdentity,
	}

	// An already-expired context must not panic and must return quickly.
	// Solve discards an attempt that overran its budget, returning no
	// solution and no error; we assert no error and no hang.
	_, err := s.Solve(ctx, g, params)
	if err != nil {
		t.Fatalf("unexpected error under an expired context: %v", err)
	}
}
