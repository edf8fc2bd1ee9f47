// Package domain contains the Cycle-Path Algorithm's graph model and
// solution types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vantos/triarb/internal/money"
)

// Edge is a directed, priced, capacity-bounded conversion between two
// currencies, derived from one side of one order book. Rate and Cap
// are plain decimals rather than money.Amount because a rate is a
// dimensionless ratio between two currencies' amounts, not an amount
// in either one.
type Edge struct {
	From, To money.Currency
	Symbol   string
	// IsBuy is true when traversing this edge buys the base currency
	// (consumes quote, produces base) — the book's ask side.
	IsBuy  bool
	Price  decimal.Decimal // book price, quote per base
	Rate   decimal.Decimal // multiplier applied to the input amount: rate = 1/Price on a buy edge, Price on a sell edge
	Cap    decimal.Decimal // capacity at the book top, denominated in the edge's From currency
	SeenAt time.Time
}

// Graph is the max-volume currency subgraph the solver searches over.
type Graph struct {
	vertices []money.Currency
	edges    map[string][]Edge // adjacency by currency code
}

// NewGraph builds an empty graph over vertices.
func NewGraph(vertices []money.Currency) *Graph {
	return &Graph{vertices: vertices, edges: make(map[string][]Edge)}
}

// AddEdge appends a directed edge.
func (g *Graph) AddEdge(e Edge) {
	g.edges[e.From.Code()] = append(g.edges[e.From.Code()], e)
}

// AddVertex records a currency as a graph vertex if not already present.
func (g *Graph) AddVertex(c money.Currency) {
	for _, v := range g.vertices {
		if v.Equals(c) {
			return
		}
	}
	g.vertices = append(g.vertices, c)
}

// Neighbors returns the outbound edges from a currency.
func (g *Graph) Neighbors(c money.Currency) []Edge {
	return g.edges[c.Code()]
}

// Vertices returns the graph's currency set.
func (g *Graph) Vertices() []money.Currency {
	return g.vertices
}

// Instruction is one leg of a Solution: a buy or sell on one pair at
// the book top used for evaluation.
type Instruction struct {
	Symbol       string
	IsBuy        bool
	ActionAmount money.Amount // signed: positive = buy base, negative = sell base
	ActionPrice  money.Amount
}

// Solution is the Cycle-Path Algorithm's output: an ordered instruction
// sequence and its estimated profit.
type Solution struct {
	Instructions        []Instruction
	EstimatedProfitBase money.Amount
	EstimatedProfitUSD  money.Amount
}
