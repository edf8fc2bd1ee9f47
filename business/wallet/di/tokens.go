// Package di contains dependency injection tokens for the wallet context.
package di

import (
	walletapp "github.com/vantos/triarb/business/wallet/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Store is the DI token for the Wallet Store.
const Store = "wallet.Store"

// GetStore resolves the shared Wallet Store.
func GetStore(sr coredi.ServiceRegistry) *walletapp.Store {
	return coredi.Resolve[*walletapp.Store](sr, Store)
}
