// Package domain contains the core order book types and invariants.
package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/vantos/triarb/internal/money"
)

// Side is which side of the book a level belongs to.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

// Level is a single price-level row. Count == 0 means "remove this
// level"; Amount is always positive here — side is tracked structurally
// rather than via sign, once a level has been classified into a book.
type Level struct {
	Price  money.Amount
	Count  int
	Amount money.Amount
}

// Book is the live replica of one symbol's bid/ask ladders. Bids are
// kept strictly price-descending, asks strictly price-ascending;
// neither side ever contains a zero-count row.
type Book struct {
	mu     sync.RWMutex
	symbol string
	bids   []Level // descending by price
	asks   []Level // ascending by price
	seenAt time.Time
}

// New creates an empty book for symbol.
func New(symbol string) *Book {
	return &Book{symbol: symbol}
}

// Symbol returns the book's trading symbol.
func (b *Book) Symbol() string {
	return b.symbol
}

// ApplySnapshot atomically replaces both ladders. levels carry side
// information via sign-of-amount, per the venue's snapshot encoding
// (positive amount = bid, negative = ask); count==0 rows are dropped
// since a snapshot is a complete replacement already.
func (b *Book) ApplySnapshot(levels []RawLevel) {
	bids := make([]Level, 0, len(levels))
	asks := make([]Level, 0, len(levels))
	for _, raw := range levels {
		if raw.Count == 0 {
			continue
		}
		lvl := Level{Price: raw.Price, Count: raw.Count, Amount: raw.Amount.Abs()}
		if raw.Amount.IsNegative() {
			asks = append(asks, lvl)
		} else {
			bids = append(bids, lvl)
		}
	}
	sort.Slice(bids, func(i, j int) bool { return cmpAmount(bids[i].Price, bids[j].Price) > 0 })
	sort.Slice(asks, func(i, j int) bool { return cmpAmount(asks[i].Price, asks[j].Price) < 0 })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids = bids
	b.asks = asks
	b.seenAt = time.Now()
}

// RawLevel is the wire-level triple (price, count, signed amount) as
// delivered by the venue, before side classification.
type RawLevel struct {
	Price  money.Amount
	Count  int
	Amount money.Amount // sign encodes side: positive=bid, negative=ask
}

// ApplyDelta upserts or removes a single level. count==0 removes the
// level; the side to remove from is implied by the sign of amount,
// per the venue convention this engine assumes (see DESIGN.md Open
// Question b). Removing a price that isn't present is a no-op.
func (b *Book) ApplyDelta(raw RawLevel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seenAt = time.Now()

	side := SideBid
	if raw.Amount.IsNegative() {
		side = SideAsk
	}

	if raw.Count == 0 {
		b.removeLocked(side, raw.Price)
		return
	}

	lvl := Level{Price: raw.Price, Count: raw.Count, Amount: raw.Amount.Abs()}
	b.upsertLocked(side, lvl)
}

func (b *Book) ladder(side Side) *[]Level {
	if side == SideBid {
		return &b.bids
	}
	return &b.asks
}

func (b *Book) removeLocked(side Side, price money.Amount) {
	ladder := b.ladder(side)
	for i, lvl := range *ladder {
		if cmpAmount(lvl.Price, price) == 0 {
			*ladder = append((*ladder)[:i], (*ladder)[i+1:]...)
			return
		}
	}
}

func (b *Book) upsertLocked(side Side, lvl Level) {
	ladder := b.ladder(side)
	descending := side == SideBid

	idx := sort.Search(len(*ladder), func(i int) bool {
		c := cmpAmount((*ladder)[i].Price, lvl.Price)
		if descending {
			return c <= 0
		}
		return c >= 0
	})

	if idx < len(*ladder) && cmpAmount((*ladder)[idx].Price, lvl.Price) == 0 {
		(*ladder)[idx] = lvl
		return
	}

	*ladder = append(*ladder, Level{})
	copy((*ladder)[idx+1:], (*ladder)[idx:])
	(*ladder)[idx] = lvl
}

// BestBid returns the highest bid, or false if the book has no bids.
func (b *Book) BestBid() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.bids) == 0 {
		return Level{}, false
	}
	return b.bids[0], true
}

// BestAsk returns the lowest ask, or false if the book has no asks.
func (b *Book) BestAsk() (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.asks) == 0 {
		return Level{}, false
	}
	return b.asks[0], true
}

// Snapshot returns an immutable copy of both ladders, safe to hand to
// the solver without holding the book's lock.
func (b *Book) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bids := make([]Level, len(b.bids))
	asks := make([]Level, len(b.asks))
	copy(bids, b.bids)
	copy(asks, b.asks)
	return Snapshot{Symbol: b.symbol, Bids: bids, Asks: asks, SeenAt: b.seenAt}
}

// Snapshot is a copy-on-write view of one symbol's book, safe to read
// from multiple solver workers concurrently.
type Snapshot struct {
	Symbol string
	Bids   []Level
	Asks   []Level
	SeenAt time.Time
}

// BestBid returns the top bid level of the snapshot, if any.
func (s Snapshot) BestBid() (Level, bool) {
	if len(s.Bids) == 0 {
		return Level{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level of the snapshot, if any.
func (s Snapshot) BestAsk() (Level, bool) {
	if len(s.Asks) == 0 {
		return Level{}, false
	}
	return s.Asks[0], true
}

// IsCrossed reports whether the snapshot violates best-bid < best-ask.
func (s Snapshot) IsCrossed() bool {
	bid, okBid := s.BestBid()
	ask, okAsk := s.BestAsk()
	if !okBid || !okAsk {
		return false
	}
	return cmpAmount(bid.Price, ask.Price) >= 0
}

func cmpAmount(a, b money.Amount) int {
	c, err := a.Cmp(b)
	if err != nil {
		panic(err)
	}
	return c
}
