// Package app hosts the Order Book Store: a registry of per-symbol
// books plus the periodic persistence hook.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/vantos/triarb/business/book/domain"
	"github.com/vantos/triarb/internal/logger"
)

// PersistenceSink receives periodic book snapshots for durable storage.
// This engine only defines the hook signature — the sink itself is
// out of scope of the core per spec.md §1.
type PersistenceSink interface {
	Persist(ctx context.Context, snapshots map[string]domain.Snapshot) error
}

// Store owns the live book replica for every subscribed symbol. All
// mutation happens from the session task; readers (the solver) only
// ever see immutable snapshots.
type Store struct {
	mu     sync.RWMutex
	books  map[string]*domain.Book
	log    logger.LoggerInterface
	sink   PersistenceSink
	period time.Duration
}

// NewStore creates an empty Order Book Store. sink may be nil, in
// which case the persistence hook is a no-op.
func NewStore(log logger.LoggerInterface, sink PersistenceSink) *Store {
	return &Store{
		books:  make(map[string]*domain.Book),
		log:    log,
		sink:   sink,
		period: 30 * time.Second,
	}
}

func (s *Store) bookFor(symbol string) *domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[symbol]
	if !ok {
		b = domain.New(symbol)
		s.books[symbol] = b
	}
	return b
}

// ApplySnapshot replaces symbol's ladders atomically.
func (s *Store) ApplySnapshot(symbol string, levels []domain.RawLevel) {
	s.bookFor(symbol).ApplySnapshot(levels)
}

// ApplyDelta upserts or removes a single level of symbol's book.
func (s *Store) ApplyDelta(symbol string, level domain.RawLevel) {
	s.bookFor(symbol).ApplyDelta(level)
}

// BestBid returns the best bid for symbol.
func (s *Store) BestBid(symbol string) (domain.Level, bool) {
	s.mu.RLock()
	b, ok := s.books[symbol]
	s.mu.RUnlock()
	if !ok {
		return domain.Level{}, false
	}
	return b.BestBid()
}

// BestAsk returns the best ask for symbol.
func (s *Store) BestAsk(symbol string) (domain.Level, bool) {
	s.mu.RLock()
	b, ok := s.books[symbol]
	s.mu.RUnlock()
	if !ok {
		return domain.Level{}, false
	}
	return b.BestAsk()
}

// SnapshotForSolver returns a copy-on-write view of every tracked
// symbol, sufficient to walk the tops of all pairs without blocking
// the session task's writers.
func (s *Store) SnapshotForSolver() map[string]domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Snapshot, len(s.books))
	for symbol, b := range s.books {
		out[symbol] = b.Snapshot()
	}
	return out
}

// RunPersistence persists book snapshots to the sink every 30s until
// ctx is canceled. It is a no-op loop if no sink was configured.
func (s *Store) RunPersistence(ctx context.Context) {
	if s.sink == nil {
		return
	}
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snaps := s.SnapshotForSolver()
			if err := s.sink.Persist(ctx, snaps); err != nil {
				s.log.Warn(ctx, "book persistence failed", "error", err)
			}
		}
	}
}
