package app

import (
	"github.com/vantos/triarb/business/solver/domain"
	"github.com/vantos/triarb/internal/money"
)

// findCycles enumerates simple cycles through root of edge length in
// [lMin, lMax] via depth-first traversal, per spec.md §4.4. Vertices
// may not repeat within a cycle other than the mandatory closing root.
func findCycles(g *domain.Graph, root money.Currency, lMin, lMax int) [][]domain.Edge {
	var out [][]domain.Edge
	visited := map[string]bool{root.Code(): true}
	var path []domain.Edge

	var walk func(current money.Currency, depth int)
	walk = func(current money.Currency, depth int) {
		if depth >= lMax {
			return
		}
		for _, e := range g.Neighbors(current) {
			if e.To.Equals(root) {
				if depth+1 < lMin {
					continue
				}
				out = append(out, append(append([]domain.Edge(nil), path...), e))
				continue
			}
			if visited[e.To.Code()] {
				continue
			}
			visited[e.To.Code()] = true
			path = append(path, e)
			walk(e.To, depth+1)
			path = path[:len(path)-1]
			visited[e.To.Code()] = false
		}
	}

	walk(root, 0)
	return out
}
