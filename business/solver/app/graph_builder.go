package app

import (
	"strings"

	"github.com/shopspring/decimal"

	bookdomain "github.com/vantos/triarb/business/book/domain"
	"github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/money"
)

// SplitSymbol decomposes a venue symbol into (base, quote) currency
// codes. The core treats symbols as opaque tokens otherwise.
type SplitSymbol func(symbol string) (base, quote string, ok bool)

// DefaultSplitSymbol handles the common "tBASEQUOTE" / "tBASE:QUOTE"
// venue symbol shapes.
func DefaultSplitSymbol(symbol string) (base, quote string, ok bool) {
	s := strings.TrimPrefix(symbol, "t")
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i], s[i+1:], true
	}
	if len(s) == 6 {
		return s[:3], s[3:], true
	}
	return "", "", false
}

// BuildGraph constructs the max-volume currency subgraph from a cloned
// immutable book snapshot set, per spec.md §4.4: each pair contributes
// a "buy base" edge off the ask top and a "sell base" edge off the bid
// top.
func BuildGraph(snapshots map[string]bookdomain.Snapshot, currencies *money.Registry, symbols []string, split SplitSymbol) *domain.Graph {
	g := domain.NewGraph(nil)

	for _, symbol := range symbols {
		baseCode, quoteCode, ok := split(symbol)
		if !ok {
			continue
		}
		base, ok1 := currencies.Get(baseCode)
		quote, ok2 := currencies.Get(quoteCode)
		if !ok1 || !ok2 {
			continue
		}
		snap, ok := snapshots[symbol]
		if !ok {
			continue
		}
		g.AddVertex(base)
		g.AddVertex(quote)

		if ask, ok := snap.BestAsk(); ok && !ask.Price.IsZero() {
			price := ask.Price.ToDecimal()
			askAmount := ask.Amount.ToDecimal()
			g.AddEdge(domain.Edge{
				From: quote, To: base, Symbol: symbol, IsBuy: true,
				Price: price, Rate: decimal.NewFromInt(1).Div(price),
				Cap: price.Mul(askAmount), SeenAt: snap.SeenAt,
			})
		}
		if bid, ok := snap.BestBid(); ok {
			price := bid.Price.ToDecimal()
			g.AddEdge(domain.Edge{
				From: base, To: quote, Symbol: symbol, IsBuy: false,
				Price: price, Rate: price,
				Cap: bid.Amount.ToDecimal(), SeenAt: snap.SeenAt,
			})
		}
	}

	return g
}
