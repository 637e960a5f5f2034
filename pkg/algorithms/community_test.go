package algorithms

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// buildGraph creates a graph from an edge list for community tests
func buildGraph(t *testing.T, edges [][2]int) *graph.Graph {
	t.Helper()

	g := graph.New()
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("Failed to add edge %v: %v", e, err)
		}
	}
	return g
}

var twoTriangles = [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}}

// TestDetect_EmptyGraph tests detection on a graph without nodes
func TestDetect_EmptyGraph(t *testing.T) {
	opt := NewLocalMoveOptimizer(graph.New(), DefaultDetectOptions())

	result, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.CommunityCount != 0 {
		t.Errorf("Expected 0 communities, got %d", result.CommunityCount)
	}
	if result.Modularity != 0 {
		t.Errorf("Expected modularity 0, got %f", result.Modularity)
	}
}

// TestDetect_TwoTriangles tests that disjoint triangles become two communities
func TestDetect_TwoTriangles(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())

	result, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.CommunityCount != 2 {
		t.Fatalf("Expected 2 communities, got %d", result.CommunityCount)
	}
	if want := []int{1, 1, 1, 4, 4, 4}; !reflect.DeepEqual(result.Assignment, want) {
		t.Errorf("Expected assignment %v, got %v", want, result.Assignment)
	}
	if math.Abs(result.Modularity-0.5) > 1e-9 {
		t.Errorf("Expected modularity 0.5, got %f", result.Modularity)
	}
	if result.Passes != 2 || result.Moves != 4 || !result.Converged {
		t.Errorf("Expected 2 passes, 4 moves, converged; got %d, %d, %v",
			result.Passes, result.Moves, result.Converged)
	}
	if opt.Modularity() != result.Modularity {
		t.Errorf("Optimizer modularity %f differs from result %f", opt.Modularity(), result.Modularity)
	}
}

// TestDetect_SingleEdge tests that both endpoints of a lone edge merge
func TestDetect_SingleEdge(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 1}})
	result, err := NewLocalMoveOptimizer(g, DefaultDetectOptions()).Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if result.CommunityCount != 1 {
		t.Errorf("Expected 1 community, got %d", result.CommunityCount)
	}
	if !reflect.DeepEqual(result.Assignment, []int{1, 1}) {
		t.Errorf("Expected both nodes in community 1, got %v", result.Assignment)
	}
	if math.Abs(result.Modularity) > 1e-9 {
		t.Errorf("Expected modularity 0 for a single community, got %f", result.Modularity)
	}
}

// TestDetect_Idempotent tests that a converged partition stays put
func TestDetect_Idempotent(t *testing.T) {
	g := buildGraph(t, append(twoTriangles, [2]int{2, 3}, [2]int{5, 6}, [2]int{6, 7}))
	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())

	first, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Second Detect failed: %v", err)
	}

	if second.Moves != 0 || second.Passes != 1 {
		t.Errorf("Expected a single pass without moves, got %d passes, %d moves", second.Passes, second.Moves)
	}
	if !reflect.DeepEqual(first.Assignment, second.Assignment) {
		t.Errorf("Assignment changed: %v -> %v", first.Assignment, second.Assignment)
	}
}

// TestDetect_Reset tests that Reset restores singleton communities
func TestDetect_Reset(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())
	opt.Detect(context.Background())

	opt.Reset()
	if !reflect.DeepEqual(opt.Assignment(), []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("Expected singleton assignment after Reset, got %v", opt.Assignment())
	}
	if opt.Modularity() != 0 {
		t.Errorf("Expected modularity reset to 0, got %f", opt.Modularity())
	}
}

// TestDetect_MaxPasses tests that the pass cap stops the loop early
func TestDetect_MaxPasses(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	opt := NewLocalMoveOptimizer(g, DetectOptions{MaxPasses: 1})

	result, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Passes != 1 || result.Converged {
		t.Errorf("Expected 1 unconverged pass, got passes=%d converged=%v", result.Passes, result.Converged)
	}
	if result.Moves != 4 {
		t.Errorf("Expected 4 moves in the first pass, got %d", result.Moves)
	}
}

// TestDetect_Cancelled tests that a cancelled context aborts detection
func TestDetect_Cancelled(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalMoveOptimizer(g, DefaultDetectOptions()).Detect(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestDetect_ParallelMatchesSequential tests component-parallel detection
func TestDetect_ParallelMatchesSequential(t *testing.T) {
	edges := append([][2]int{}, twoTriangles...)
	edges = append(edges, [2]int{10, 11}, [2]int{11, 12}, [2]int{12, 13}, [2]int{13, 10}, [2]int{10, 12}, [2]int{7, 8})

	seq, err := NewLocalMoveOptimizer(buildGraph(t, edges), DefaultDetectOptions()).Detect(context.Background())
	if err != nil {
		t.Fatalf("Sequential Detect failed: %v", err)
	}
	par, err := NewLocalMoveOptimizer(buildGraph(t, edges), DetectOptions{Parallel: true, Workers: 3}).Detect(context.Background())
	if err != nil {
		t.Fatalf("Parallel Detect failed: %v", err)
	}

	if !reflect.DeepEqual(seq.Assignment, par.Assignment) {
		t.Errorf("Parallel assignment %v differs from sequential %v", par.Assignment, seq.Assignment)
	}
	if seq.CommunityCount != par.CommunityCount {
		t.Errorf("Community counts differ: %d vs %d", seq.CommunityCount, par.CommunityCount)
	}
	if math.Abs(seq.Modularity-par.Modularity) > 1e-12 {
		t.Errorf("Modularity differs: %f vs %f", seq.Modularity, par.Modularity)
	}
	if seq.Moves != par.Moves {
		t.Errorf("Move totals differ: %d vs %d", seq.Moves, par.Moves)
	}
}

// TestDetect_SparseIDs tests community arrays sized to the id space
func TestDetect_SparseIDs(t *testing.T) {
	g := buildGraph(t, [][2]int{{10, 20}})
	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())

	result, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Assignment) != 21 {
		t.Errorf("Expected assignment of length 21, got %d", len(result.Assignment))
	}
	if result.CommunityCount != 1 {
		t.Errorf("Expected 1 community over present nodes, got %d", result.CommunityCount)
	}

	if _, err := opt.CommunityOf(25); !errors.Is(err, graph.ErrRange) {
		t.Errorf("Expected ErrRange for id 25, got %v", err)
	}
	if c, err := opt.CommunityOf(10); err != nil || c != 20 {
		t.Errorf("Expected node 10 in community 20, got %d (%v)", c, err)
	}
}

// TestDetect_TooSparseIDs tests that a huge id on a small graph is reported
// instead of sizing the assignment to it
func TestDetect_TooSparseIDs(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, graph.MaxID}})
	if err := CheckIDSpace(g); !errors.Is(err, graph.ErrConfig) {
		t.Fatalf("Expected ErrConfig from CheckIDSpace, got %v", err)
	}

	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())
	if n := len(opt.Assignment()); n != 0 {
		t.Errorf("Expected no assignment slots, got %d", n)
	}
	if _, err := opt.Detect(context.Background()); !errors.Is(err, graph.ErrConfig) {
		t.Errorf("Expected ErrConfig from Detect, got %v", err)
	}
	if _, err := opt.CommunityOf(0); !errors.Is(err, graph.ErrRange) {
		t.Errorf("Expected ErrRange before a successful Detect, got %v", err)
	}
}

// TestCheckIDSpace_Bounds tests the dense limit and the per-node allowance
func TestCheckIDSpace_Bounds(t *testing.T) {
	// nodes 0..n-2 plus one high id, so n nodes in total
	spread := func(n, high int) []int {
		ids := make([]int, 0, n)
		for i := 0; i < n-1; i++ {
			ids = append(ids, i)
		}
		return append(ids, high)
	}
	const n = DenseIDLimit/SparseIDFactor + 1

	tests := []struct {
		name  string
		ids   []int
		valid bool
	}{
		{"dense limit", []int{0, DenseIDLimit - 1}, true},
		{"past dense limit", []int{0, DenseIDLimit}, false},
		{"within per-node allowance", spread(n, SparseIDFactor*n-1), true},
		{"past per-node allowance", spread(n, SparseIDFactor*n), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			for _, id := range tt.ids {
				if err := g.AddNode(id); err != nil {
					t.Fatalf("AddNode(%d): %v", id, err)
				}
			}
			err := CheckIDSpace(g)
			if tt.valid && err != nil {
				t.Errorf("Expected id space to be accepted, got %v", err)
			}
			if !tt.valid && !errors.Is(err, graph.ErrConfig) {
				t.Errorf("Expected ErrConfig, got %v", err)
			}
		})
	}
}

// TestDetect_GraphGrowth tests that nodes added after construction are covered
func TestDetect_GraphGrowth(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 1}})
	opt := NewLocalMoveOptimizer(g, DefaultDetectOptions())
	g.AddEdge(1, 2)

	result, err := opt.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Assignment) != 3 {
		t.Errorf("Expected assignment to grow to 3 slots, got %d", len(result.Assignment))
	}
}

// TestModularity_Singletons tests modularity of the initial partition
func TestModularity_Singletons(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	q := Modularity(g, []int{0, 1, 2, 3, 4, 5})

	// No internal edges; six communities of degree 2 over 2m=12.
	want := -6 * (2.0 / 12) * (2.0 / 12)
	if math.Abs(q-want) > 1e-12 {
		t.Errorf("Expected %f, got %f", want, q)
	}
}

// TestModularity_SelfLoop tests that self-loops count as internal entries
func TestModularity_SelfLoop(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 0}})
	q := Modularity(g, []int{0})

	// internal=2, degree=2, 2m=2
	if math.Abs(q) > 1e-12 {
		t.Errorf("Expected 0 for a lone self-loop, got %f", q)
	}
}

// TestCommunities_Grouping tests grouping of an assignment
func TestCommunities_Grouping(t *testing.T) {
	result := &CommunityDetectionResult{Assignment: []int{1, 1, 1, 4, 4, 4}}
	comms := result.Communities([]int{0, 1, 2, 3, 4, 5})

	if len(comms) != 2 {
		t.Fatalf("Expected 2 communities, got %d", len(comms))
	}
	if comms[0].ID != 1 || !reflect.DeepEqual(comms[0].Nodes, []int{0, 1, 2}) {
		t.Errorf("Unexpected first community %+v", comms[0])
	}
	if comms[1].ID != 4 || comms[1].Size != 3 {
		t.Errorf("Unexpected second community %+v", comms[1])
	}
}

// TestConnectedComponents_Order tests component discovery and ordering
func TestConnectedComponents_Order(t *testing.T) {
	g := buildGraph(t, [][2]int{{5, 1}, {7, 8}, {1, 3}})
	g.AddNode(9)

	got := ConnectedComponents(g)
	want := [][]int{{5, 1, 3}, {7, 8}, {9}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
