package domain

import "sync"

// SubState is a subscription's lifecycle state.
type SubState int

const (
	SubPending SubState = iota
	SubConfirmed
	SubRemoved
)

// Subscription tracks one requested book channel from request through
// confirmation, keyed by symbol until the venue assigns a chan_id.
type Subscription struct {
	Symbol string
	ChanID int64
	State  SubState
}

// Registry is the Subscription Registry: it tracks every book channel
// the session has asked for, confirms them against "subscribed" frames,
// and answers "are we ready to trade" for the trading loop's guard
// conditions (spec.md §4.2, §4.6).
type Registry struct {
	mu       sync.RWMutex
	bySymbol map[string]*Subscription
	byChanID map[int64]*Subscription
	want     int // number of symbols the universe requires
}

// NewRegistry creates an empty Subscription Registry expecting want
// confirmed book channels before AllBooksReady reports true.
func NewRegistry(want int) *Registry {
	return &Registry{
		bySymbol: make(map[string]*Subscription),
		byChanID: make(map[int64]*Subscription),
		want:     want,
	}
}

// Reset drops every tracked subscription, confirmed or pending. The
// Session Controller calls this before resubscribing after a reconnect
// or a maintenance window ends, since the venue does not carry channel
// assignments across a dropped connection (spec.md §4.3, §5).
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySymbol = make(map[string]*Subscription)
	r.byChanID = make(map[int64]*Subscription)
}

// Add records a pending subscription request for symbol.
func (r *Registry) Add(symbol string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySymbol[symbol]; ok {
		return
	}
	r.bySymbol[symbol] = &Subscription{Symbol: symbol, State: SubPending}
}

// Confirm marks symbol's subscription confirmed under chanID, as
// reported by a "subscribed" frame.
func (r *Registry) Confirm(symbol string, chanID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.bySymbol[symbol]
	if !ok {
		sub = &Subscription{Symbol: symbol}
		r.bySymbol[symbol] = sub
	}
	sub.ChanID = chanID
	sub.State = SubConfirmed
	r.byChanID[chanID] = sub
}

// Remove marks the subscription owning chanID removed, as reported by
// an "unsubscribed" frame.
func (r *Registry) Remove(chanID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byChanID[chanID]
	if !ok {
		return
	}
	sub.State = SubRemoved
	delete(r.byChanID, chanID)
}

// Dispatch resolves chanID to the symbol a data frame belongs to.
func (r *Registry) Dispatch(chanID int64) (symbol string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.byChanID[chanID]
	if !ok {
		return "", false
	}
	return sub.Symbol, true
}

// AllBooksReady reports whether the number of confirmed subscriptions
// has reached the number the registry was created to want — one of the
// trading loop's guard conditions. It counts confirmed entries only; it
// does not check which symbols they belong to.
func (r *Registry) AllBooksReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sub := range r.bySymbol {
		if sub.State == SubConfirmed {
			n++
		}
	}
	return n >= r.want
}

// ConfirmedCount returns the number of confirmed subscriptions.
func (r *Registry) ConfirmedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sub := range r.bySymbol {
		if sub.State == SubConfirmed {
			n++
		}
	}
	return n
}
