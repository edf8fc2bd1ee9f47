// Package circuitbreaker adapts sony/gobreaker/v2 to this codebase's
// naming and default-settings conventions.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// State re-exports gobreaker's circuit state so callers never import
// gobreaker directly.
type State = gobreaker.State

// Config mirrors gobreaker.Settings under names consistent with the
// rest of the codebase's *Config structs.
type Config struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	FailureRatio  float64
	MinRequests   uint32
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns sane defaults for a connection guarded by a
// circuit breaker: trip after 60% failures with at least 5 samples in
// a rolling 30s window, stay open for 15s before probing again.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     30 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker[T].
type CircuitBreaker[T any] struct {
	inner *gobreaker.CircuitBreaker[T]
}

// New creates a CircuitBreaker from Config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}
	return &CircuitBreaker[T]{inner: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs req through the breaker, short-circuiting with
// gobreaker.ErrOpenState while the breaker is open.
func (cb *CircuitBreaker[T]) Execute(req func() (T, error)) (T, error) {
	return cb.inner.Execute(req)
}

// State reports the breaker's current state.
func (cb *CircuitBreaker[T]) State() State {
	return cb.inner.State()
}
