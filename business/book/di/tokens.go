// Package di contains dependency injection tokens for the book context.
package di

import (
	bookapp "github.com/vantos/triarb/business/book/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Store is the DI token for the Order Book Store.
const Store = "book.Store"

// GetStore resolves the shared Order Book Store.
func GetStore(sr coredi.ServiceRegistry) *bookapp.Store {
	return coredi.Resolve[*bookapp.Store](sr, Store)
}
