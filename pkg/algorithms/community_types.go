package algorithms

import "sort"

// Community is one group of nodes sharing a community id
type Community struct {
	ID    int
	Nodes []int
	Size  int
}

// DetectOptions configures the local-move optimizer
type DetectOptions struct {
	MaxPasses int  // 0 = run passes until one makes no move
	Parallel  bool // optimize connected components concurrently
	Workers   int  // worker count when Parallel is set; <= 0 means one per component up to 8
}

// DefaultDetectOptions runs sequentially with unbounded passes.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{}
}

// CommunityDetectionResult contains the outcome of a Detect call
type CommunityDetectionResult struct {
	Assignment     []int   // node id -> community id, sized MaxNodeID()+1
	CommunityCount int     // distinct community ids over nodes present in the graph
	Modularity     float64 // Quality measure of the partitioning
	Passes         int     // passes executed by this call
	Moves          int     // node moves made by this call
	Converged      bool    // false when MaxPasses stopped the loop early
}

// Communities groups node ids by community, ordered by community id.
// Nodes appear in the order given by nodeIDs.
func (r *CommunityDetectionResult) Communities(nodeIDs []int) []*Community {
	byID := make(map[int]*Community)
	for _, n := range nodeIDs {
		if n < 0 || n >= len(r.Assignment) {
			continue
		}
		c := r.Assignment[n]
		comm, ok := byID[c]
		if !ok {
			comm = &Community{ID: c}
			byID[c] = comm
		}
		comm.Nodes = append(comm.Nodes, n)
		comm.Size++
	}

	result := make([]*Community, 0, len(byID))
	for _, comm := range byID {
		result = append(result, comm)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// NodeInfo describes a node's position in the partitioned graph
type NodeInfo struct {
	Node                 int
	Community            int
	ConnectedCommunities map[int]struct{} // communities of every node reached by the traversal
	DirectNeighbors      []int            // adjacency order, duplicates kept
	AllConnected         map[int]struct{} // every node reached as somebody's neighbor
	Visited              int              // nodes dequeued by the traversal
}

// SortedConnectedCommunities returns ConnectedCommunities in ascending order.
func (ni *NodeInfo) SortedConnectedCommunities() []int {
	return sortedKeys(ni.ConnectedCommunities)
}

// SortedAllConnected returns AllConnected in ascending order.
func (ni *NodeInfo) SortedAllConnected() []int {
	return sortedKeys(ni.AllConnected)
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
