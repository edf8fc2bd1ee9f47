// Package di contains dependency injection tokens for the session context.
package di

import (
	sessionapp "github.com/vantos/triarb/business/session/app"
	sessiondomain "github.com/vantos/triarb/business/session/domain"
	coredi "github.com/vantos/triarb/internal/di"
)

// DI tokens for the session module.
const (
	SubscriptionRegistry = "session.SubscriptionRegistry"
	Controller           = "session.Controller"
)

// GetSubscriptionRegistry resolves the shared Subscription Registry.
func GetSubscriptionRegistry(sr coredi.ServiceRegistry) *sessiondomain.Registry {
	return coredi.Resolve[*sessiondomain.Registry](sr, SubscriptionRegistry)
}

// GetController resolves the Session Controller.
func GetController(sr coredi.ServiceRegistry) *sessionapp.Controller {
	return coredi.Resolve[*sessionapp.Controller](sr, Controller)
}
