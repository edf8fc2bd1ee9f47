// Package di provides a minimal string-token service locator used to
// wire bounded-context modules together without a global registry.
package di

import "fmt"

// Token is a unique string key identifying a registered service.
type Token = string

// ServiceRegistry is the read side used by factories and modules to
// resolve already-registered services.
type ServiceRegistry interface {
	Get(token Token) any
	Has(token Token) bool
}

// Container is the read-write side: modules register both global
// infrastructure (by plain name, via Register) and typed factories
// (via the package-level RegisterToken helper) against it.
type Container interface {
	ServiceRegistry
	Register(token Token, value any)
}

type container struct {
	services map[Token]any
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{services: make(map[Token]any)}
}

func (c *container) Register(token Token, value any) {
	c.services[token] = value
}

func (c *container) Get(token Token) any {
	return c.services[token]
}

func (c *container) Has(token Token) bool {
	_, ok := c.services[token]
	return ok
}

// RegisterToken registers a lazily-resolved factory under token. The
// factory runs once, on the first Resolve of token, and its result is
// cached — later Resolves return the same instance. This is the pattern every
// business/*/module.go RegisterServices call uses to wire its app
// services against the shared container.
func RegisterToken[T any](c Container, token Token, factory func(ServiceRegistry) T) {
	var (
		built bool
		value T
	)
	c.Register(token, lazyFunc(func(sr ServiceRegistry) any {
		if !built {
			value = factory(sr)
			built = true
		}
		return value
	}))
}

// lazyFunc marks a registered value as a deferred factory rather than
// a resolved instance; Resolve unwraps it, passing itself as the
// registry so factories can depend on other tokens.
type lazyFunc func(ServiceRegistry) any

// Resolve fetches and type-asserts a token's value, invoking its
// factory on first access if it was registered via RegisterToken.
func Resolve[T any](sr ServiceRegistry, token Token) T {
	raw := sr.Get(token)
	if fn, ok := raw.(lazyFunc); ok {
		raw = fn(sr)
	}
	value, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: token %q is not of the requested type", token))
	}
	return value
}
