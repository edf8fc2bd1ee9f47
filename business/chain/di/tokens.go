// Package di contains dependency injection tokens for the chain context.
package di

import (
	chainapp "github.com/vantos/triarb/business/chain/app"
	coredi "github.com/vantos/triarb/internal/di"
)

// Coordinator is the DI token for the Order-Chain Coordinator.
const Coordinator = "chain.Coordinator"

// GetCoordinator resolves the shared Order-Chain Coordinator.
func GetCoordinator(sr coredi.ServiceRegistry) *chainapp.Coordinator {
	return coredi.Resolve[*chainapp.Coordinator](sr, Coordinator)
}
