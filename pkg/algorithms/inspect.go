package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Inspect runs an unbounded BFS from target and reports the node's community,
// its direct neighbors and everything reachable from it.
//
// Every neighbor of every visited node is recorded in AllConnected together
// with its community, so the target itself appears there as soon as it has a
// single edge. DirectNeighbors keeps adjacency order and duplicates.
func Inspect(g *graph.Graph, assignment []int, target int) (*NodeInfo, error) {
	if !g.HasNode(target) {
		return nil, graph.NodeNotFoundError("inspect", target)
	}
	community, err := CommunityOf(assignment, target)
	if err != nil {
		return nil, err
	}

	info := &NodeInfo{
		Node:                 target,
		Community:            community,
		ConnectedCommunities: make(map[int]struct{}),
		AllConnected:         make(map[int]struct{}),
	}

	visited := map[int]bool{target: true}
	queue := list.New()
	queue.PushBack(target)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(int)
		info.Visited++

		for _, neighbor := range g.Neighbors(current) {
			if current == target {
				info.DirectNeighbors = append(info.DirectNeighbors, neighbor)
			}

			nc, err := CommunityOf(assignment, neighbor)
			if err != nil {
				return nil, err
			}
			info.ConnectedCommunities[nc] = struct{}{}
			info.AllConnected[neighbor] = struct{}{}

			if !visited[neighbor] {
				visited[neighbor] = true
				queue.PushBack(neighbor)
			}
		}
	}

	return info, nil
}
