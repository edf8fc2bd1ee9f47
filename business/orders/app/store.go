// Package app hosts the Order/Trade Store: indexed views of open and
// closed orders and their executions.
package app

import (
	"sync"

	"github.com/vantos/triarb/business/orders/domain"
)

// Store indexes orders by id, client id, and gid, and keeps cumulative
// filled amounts per order for fill-detection against a step's target.
type Store struct {
	mu            sync.RWMutex
	byID          map[int64]domain.Order
	byClientID    map[int64]domain.Order
	byGID         map[int64][]domain.Order
	trades        []domain.Trade
	notifications map[int64]domain.Notification
}

// NewStore creates an empty Order/Trade Store.
func NewStore() *Store {
	return &Store{
		byID:          make(map[int64]domain.Order),
		byClientID:    make(map[int64]domain.Order),
		byGID:         make(map[int64][]domain.Order),
		notifications: make(map[int64]domain.Notification),
	}
}

// RecordNotification indexes an on-req/oc-req acknowledgment by the
// client id the venue echoed back in it, so the Order-Chain Coordinator
// can poll for the ack that matches one of its own steps.
func (s *Store) RecordNotification(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ClientID] = n
}

// NotificationForClientID returns the most recent notification recorded
// against clientID, if any.
func (s *Store) NotificationForClientID(clientID int64) (domain.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[clientID]
	return n, ok
}

// Upsert records an order snapshot or update (os/on/ou frames).
func (s *Store) Upsert(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[o.ID] = o
	if o.ClientID != 0 {
		s.byClientID[o.ClientID] = o
	}
	if o.GID != 0 {
		s.byGID[o.GID] = append(s.byGID[o.GID], o)
	}
}

// ByID returns the order with the given venue-assigned id.
func (s *Store) ByID(id int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	return o, ok
}

// ByClientID returns the order matching a caller-generated client id.
func (s *Store) ByClientID(clientID int64) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byClientID[clientID]
	return o, ok
}

// RecordTrade appends a trade execution (te/tu frame).
func (s *Store) RecordTrade(t domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
}

// TradesForOrder returns every recorded trade against orderID, in
// arrival order.
func (s *Store) TradesForOrder(orderID int64) []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Trade
	for _, t := range s.trades {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out
}

// CumulativeFilled sums the absolute trade amounts recorded against
// orderID, for comparison against a chain step's target amount.
func (s *Store) CumulativeFilled(orderID int64) (sum int64) {
	for _, t := range s.TradesForOrder(orderID) {
		sum += t.Amount.Abs().Raw().Int64()
	}
	return sum
}
