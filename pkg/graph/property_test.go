package graph

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildFromPairs pairs up consecutive ids into edges.
func buildFromPairs(ids []int) *Graph {
	g := New()
	for i := 0; i+1 < len(ids); i += 2 {
		g.AddEdge(ids[i], ids[i+1])
	}
	return g
}

// TestGraphInvariants uses property-based testing to verify store invariants
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("degree sum is twice the edge count", prop.ForAll(
		func(ids []int) bool {
			g := buildFromPairs(ids)
			return g.DegreeSum() == 2*float64(g.EdgeCount())
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.Property("adjacency length equals degree", prop.ForAll(
		func(ids []int) bool {
			g := buildFromPairs(ids)
			for _, id := range g.NodeIDs() {
				if float64(len(g.Neighbors(id))) != g.Degree(id) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.Property("node ids are unique", prop.ForAll(
		func(ids []int) bool {
			g := buildFromPairs(ids)
			seen := make(map[int]bool)
			for _, id := range g.NodeIDs() {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return len(seen) == g.NodeCount()
		},
		gen.SliceOf(gen.IntRange(0, 40)),
	))

	properties.TestingRun(t)
}
