// Package di contains dependency injection tokens for the trading context.
package di

import (
	tradingapp "github.com/vantos/triarb/business/trading/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Loop is the DI token for the Trading Loop.
const Loop = "trading.Loop"

// GetLoop resolves the shared Trading Loop.
func GetLoop(sr coredi.ServiceRegistry) *tradingapp.Loop {
	return coredi.Resolve[*tradingapp.Loop](sr, Loop)
}
