package algorithms

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

func identity(g *graph.Graph) []int {
	a := make([]int, g.MaxNodeID()+1)
	for i := range a {
		a[i] = i
	}
	return a
}

// TestInspect_Path tests traversal over a path plus a separate component
func TestInspect_Path(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 1}, {1, 2}, {3, 4}})

	info, err := Inspect(g, identity(g), 0)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}

	if info.Community != 0 {
		t.Errorf("Expected community 0, got %d", info.Community)
	}
	if !reflect.DeepEqual(info.DirectNeighbors, []int{1}) {
		t.Errorf("Expected direct neighbors [1], got %v", info.DirectNeighbors)
	}
	if !reflect.DeepEqual(info.SortedAllConnected(), []int{0, 1, 2}) {
		t.Errorf("Expected component {0,1,2}, got %v", info.SortedAllConnected())
	}
	if !reflect.DeepEqual(info.SortedConnectedCommunities(), []int{0, 1, 2}) {
		t.Errorf("Expected communities {0,1,2}, got %v", info.SortedConnectedCommunities())
	}
	if info.Visited != 3 {
		t.Errorf("Expected 3 visited nodes, got %d", info.Visited)
	}
}

// TestInspect_ParallelEdges tests that direct neighbors keep duplicates
func TestInspect_ParallelEdges(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 1}, {0, 2}, {0, 1}})

	info, err := Inspect(g, identity(g), 0)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !reflect.DeepEqual(info.DirectNeighbors, []int{1, 2, 1}) {
		t.Errorf("Expected [1 2 1], got %v", info.DirectNeighbors)
	}
	if len(info.AllConnected) != 3 {
		t.Errorf("Expected 3 connected nodes, got %d", len(info.AllConnected))
	}
}

// TestInspect_CommunitiesAfterDetection tests community reporting
func TestInspect_CommunitiesAfterDetection(t *testing.T) {
	g := buildGraph(t, twoTriangles)
	assignment := []int{1, 1, 1, 4, 4, 4}

	info, err := Inspect(g, assignment, 3)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Community != 4 {
		t.Errorf("Expected community 4, got %d", info.Community)
	}
	if !reflect.DeepEqual(info.SortedConnectedCommunities(), []int{4}) {
		t.Errorf("Expected only community 4, got %v", info.SortedConnectedCommunities())
	}
	if !reflect.DeepEqual(info.SortedAllConnected(), []int{3, 4, 5}) {
		t.Errorf("Expected {3,4,5}, got %v", info.SortedAllConnected())
	}
}

// TestInspect_IsolatedNode tests a node without edges
func TestInspect_IsolatedNode(t *testing.T) {
	g := graph.New()
	g.AddNode(0)

	info, err := Inspect(g, identity(g), 0)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if len(info.AllConnected) != 0 || len(info.DirectNeighbors) != 0 {
		t.Errorf("Expected no connections, got %+v", info)
	}
	if info.Visited != 1 {
		t.Errorf("Expected 1 visited node, got %d", info.Visited)
	}
}

// TestInspect_UnknownNode tests range errors for absent nodes
func TestInspect_UnknownNode(t *testing.T) {
	g := buildGraph(t, [][2]int{{0, 1}})

	if _, err := Inspect(g, identity(g), 7); !errors.Is(err, graph.ErrRange) {
		t.Errorf("Expected ErrRange, got %v", err)
	}
	if _, err := Inspect(g, []int{}, 0); !errors.Is(err, graph.ErrRange) {
		t.Errorf("Expected ErrRange for short assignment, got %v", err)
	}
}
