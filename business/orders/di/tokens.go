// Package di contains dependency injection tokens for the orders context.
package di

import (
	ordersapp "github.com/vantos/triarb/business/orders/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Store is the DI token for the Order/Trade Store.
const Store = "orders.Store"

// GetStore resolves the shared Order/Trade Store.
func GetStore(sr coredi.ServiceRegistry) *ordersapp.Store {
	return coredi.Resolve[*ordersapp.Store](sr, Store)
}
