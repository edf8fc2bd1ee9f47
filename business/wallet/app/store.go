// Package app hosts the Wallet Store and its rate-limited recompute
// request helper.
package app

import (
	"context"
	"sync"

	"github.com/vantos/triarb/business/wallet/domain"
	"github.com/vantos/triarb/internal/money"
	"github.com/vantos/triarb/internal/ratelimit"
)

// RecomputeRequester sends a "calc" balance recompute request for the
// given wallet keys. This is the Session Controller's outbound frame.
type RecomputeRequester interface {
	RequestRecompute(ctx context.Context, keys []domain.Key) error
}

// Store is the live (wallet_type, currency) -> Balance map. All
// mutation comes from the session task processing ws/wu frames;
// recompute requests are rate-limited to 30 per batch, 8 batches/sec
// per client, matching spec.md §5's shared-resource rule.
type Store struct {
	mu        sync.RWMutex
	balances  map[domain.Key]domain.Balance
	requester RecomputeRequester
	limiter   *ratelimit.Limiter
}

// NewStore creates an empty Wallet Store. The limiter paces recompute
// requests at 8 batches/second; batches themselves are capped to 30
// keys by RequestRecompute.
func NewStore(requester RecomputeRequester) *Store {
	return &Store{
		balances:  make(map[domain.Key]domain.Balance),
		requester: requester,
		limiter:   ratelimit.New(8 * 60),
	}
}

// Update sets the balance for key, as received from a ws/wu frame.
func (s *Store) Update(key domain.Key, balance domain.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[key] = balance
}

// MarkStale flags key's balance as unusable, pending recompute.
func (s *Store) MarkStale(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[key]
	b.Available = nil
	s.balances[key] = b
}

// Get returns key's balance and whether it is currently tracked.
func (s *Store) Get(key domain.Key) (domain.Balance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[key]
	return b, ok
}

// Available returns key's available balance, or false if the wallet
// is untracked or stale — the caller must treat a stale wallet as
// unusable until a fresh recompute lands.
func (s *Store) Available(key domain.Key) (money.Amount, bool) {
	b, tracked := s.Get(key)
	if !tracked || b.IsStale() {
		return money.Amount{}, false
	}
	return *b.Available, true
}

const maxRecomputeBatch = 30

// RequestRecompute asks the venue to recompute the given wallet keys,
// split into batches of at most 30 and paced by the rate limiter.
func (s *Store) RequestRecompute(ctx context.Context, keys []domain.Key) error {
	for len(keys) > 0 {
		n := maxRecomputeBatch
		if n > len(keys) {
			n = len(keys)
		}
		batch := keys[:n]
		keys = keys[n:]

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		for _, k := range batch {
			s.MarkStale(k)
		}
		if err := s.requester.RequestRecompute(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}
