package app

import (
	"context"
	"io"
	"testing"

	walletapp "github.com/vantos/triarb/business/wallet/app"
	walletdomain "github.com/vantos/triarb/business/wallet/domain"
	"github.com/vantos/triarb/internal/config"
	"github.com/vantos/triarb/internal/logger"
	"github.com/vantos/triarb/internal/money"
)

type noopRecomputeRequester struct{}

func (noopRecomputeRequester) RequestRecompute(ctx context.Context, keys []walletdomain.Key) error {
	return nil
}

func testLoopLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

// TestLoop_StartAmount_ClampsToWalletAvailable covers review comment
// (c): a₀ must be min(A₀, wallet_available(c₀)), not the configured
// max amount unconditionally.
func TestLoop_StartAmount_ClampsToWalletAvailable(t *testing.T) {
	usd := money.NewCurrency("USD", 2)
	wallets := walletapp.NewStore(noopRecomputeRequester{})
	avail, err := money.ParseString(usd, "50")
	if err != nil {
		t.Fatalf("failed to parse test amount: %v", err)
	}
	wallets.Update(walletdomain.Key{Type: walletdomain.WalletExchange, Currency: "USD"}, walletdomain.Balance{
		Total:     avail,
		Available: &avail,
	})

	cfg := &config.TradingConfig{Currency: "USD", MaxAmount: 1000}
	l := NewLoop(cfg, nil, nil, nil, nil, nil, wallets, nil, testLoopLogger())

	got, ok := l.startAmount()
	if !ok {
		t.Fatal("expected a usable start amount")
	}
	if got.String() != "50" {
		t.Errorf("expected start amount clamped to wallet available 50, got %s", got)
	}
}

// TestLoop_StartAmount_UsesConfiguredMaxWhenWalletIsLarger covers the
// other side of the min: a flush wallet should not let a₀ exceed A₀.
func TestLoop_StartAmount_UsesConfiguredMaxWhenWalletIsLarger(t *testing.T) {
	usd := money.NewCurrency("USD", 2)
	wallets := walletapp.NewStore(noopRecomputeRequester{})
	avail, err := money.ParseString(usd, "100000")
	if err != nil {
		t.Fatalf("failed to parse test amount: %v", err)
	}
	wallets.Update(walletdomain.Key{Type: walletdomain.WalletExchange, Currency: "USD"}, walletdomain.Balance{
		Total:     avail,
		Available: &avail,
	})

	cfg := &config.TradingConfig{Currency: "USD", MaxAmount: 1000}
	l := NewLoop(cfg, nil, nil, nil, nil, nil, wallets, nil, testLoopLogger())

	got, ok := l.startAmount()
	if !ok {
		t.Fatal("expected a usable start amount")
	}
	if got.String() != "1000" {
		t.Errorf("expected start amount clamped to configured max 1000, got %s", got)
	}
}

// TestLoop_StartAmount_UnavailableWhenWalletUntracked covers the stale
// wallet case: the base wallet is untracked until a ws/wu frame lands
// for it, and a₀ must not default to the configured max in that case.
func TestLoop_StartAmount_UnavailableWhenWalletUntracked(t *testing.T) {
	wallets := walletapp.NewStore(noopRecomputeRequester{})
	cfg := &config.TradingConfig{Currency: "USD", MaxAmount: 1000}
	l := NewLoop(cfg, nil, nil, nil, nil, nil, wallets, nil, testLoopLogger())

	if _, ok := l.startAmount(); ok {
		t.Fatal("expected no usable start amount for an untracked wallet")
	}
}
