// Package graph holds the undirected adjacency store the community optimizer
// and propagation simulator run against.
//
// A Graph is built once and treated as read-only afterwards; it performs no
// locking of its own. Edges are appended as given: self-loops and parallel
// edges are kept, and both count towards degree and the edge total.
package graph

import "math"

// MaxID is the largest node id the store accepts. Community assignments are
// dense arrays indexed by node id, so ids beyond this are rejected up front.
const MaxID = math.MaxInt32

// Graph is an undirected multigraph keyed by non-negative integer node ids.
type Graph struct {
	adj    map[int][]int
	degree map[int]float64
	order  []int // node ids in first-insertion order
	edges  int   // number of AddEdge calls
	maxID  int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		adj:    make(map[int][]int),
		degree: make(map[int]float64),
		maxID:  -1,
	}
}

// AddNode registers an isolated node. Adding a node that already exists is a no-op.
func (g *Graph) AddNode(id int) error {
	if err := checkID("add node", id); err != nil {
		return err
	}
	g.touch(id)
	return nil
}

// AddEdge appends v to u's neighbor list and u to v's, bumps both degrees by
// one and the edge total by one. A self-loop therefore adds the node to its
// own list twice and raises its degree by two.
func (g *Graph) AddEdge(u, v int) error {
	if err := checkID("add edge", u); err != nil {
		return err
	}
	if err := checkID("add edge", v); err != nil {
		return err
	}
	g.touch(u)
	g.touch(v)

	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
	g.degree[u]++
	g.degree[v]++
	g.edges++
	return nil
}

func checkID(op string, id int) error {
	if id < 0 || id > MaxID {
		return NewError(op, ErrRange).Node(id).Context("ids must be in [0, MaxID]").Err()
	}
	return nil
}

func (g *Graph) touch(id int) {
	if _, ok := g.adj[id]; ok {
		return
	}
	g.adj[id] = nil
	g.order = append(g.order, id)
	if id > g.maxID {
		g.maxID = id
	}
}

// Neighbors returns the adjacency sequence for node. Unknown nodes have no
// neighbors. The returned slice must not be modified.
func (g *Graph) Neighbors(node int) []int {
	return g.adj[node]
}

// Degree returns the accumulated degree of node, 0 for unknown nodes.
func (g *Graph) Degree(node int) float64 {
	return g.degree[node]
}

// HasNode reports whether node has been referenced by AddEdge or AddNode.
func (g *Graph) HasNode(node int) bool {
	_, ok := g.adj[node]
	return ok
}

// NodeIDs returns all node ids in first-insertion order. The order drives the
// optimizer's visitation order and so affects which local optimum is reached.
func (g *Graph) NodeIDs() []int {
	ids := make([]int, len(g.order))
	copy(ids, g.order)
	return ids
}

// NodeCount returns the number of distinct node ids.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of AddEdge calls, not half the degree sum of a
// deduplicated edge set.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// MaxNodeID returns the largest node id, or -1 for an empty graph.
func (g *Graph) MaxNodeID() int {
	return g.maxID
}

// DegreeSum returns the sum of all node degrees. It always equals 2*EdgeCount.
func (g *Graph) DegreeSum() float64 {
	sum := 0.0
	for _, id := range g.order {
		sum += g.degree[id]
	}
	return sum
}
