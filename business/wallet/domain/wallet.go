// Package domain contains the Wallet Store's core types.
package domain

import "github.com/vantos/triarb/internal/money"

// WalletType distinguishes the venue's wallet buckets (exchange,
// margin, funding, ...). The core treats it as an opaque venue string,
// except for WalletExchange: the spot/exchange wallet the Trading Loop
// sizes a₀ against, per spec.md §4.4's wallet_available(c₀) term.
type WalletType string

// WalletExchange is the spot wallet bucket used for arbitrage sizing.
const WalletExchange WalletType = "exchange"

// Key identifies a wallet balance by (wallet_type, currency).
type Key struct {
	Type     WalletType
	Currency string
}

// Balance is the state of one wallet key. Available == nil marks the
// balance stale: a recompute has been requested and the wallet is
// unusable for sizing trades until fresh data arrives (spec.md Open
// Question c).
type Balance struct {
	Total     money.Amount
	Available *money.Amount
}

// IsStale reports whether the balance needs a recompute before use.
func (b Balance) IsStale() bool {
	return b.Available == nil
}
