package algorithms

import (
	"container/list"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// ConnectedComponents splits the graph into connected components. Components
// are ordered by their first node in g.NodeIDs(), and the nodes of each
// component keep that store order, so optimizing a component on its own
// visits nodes in the same relative order as a full sequential pass.
func ConnectedComponents(g *graph.Graph) [][]int {
	componentOf := make(map[int]int, g.NodeCount())
	count := 0

	for _, start := range g.NodeIDs() {
		if _, seen := componentOf[start]; seen {
			continue
		}

		queue := list.New()
		queue.PushBack(start)
		componentOf[start] = count

		for queue.Len() > 0 {
			nodeID := queue.Remove(queue.Front()).(int)
			for _, neighbor := range g.Neighbors(nodeID) {
				if _, seen := componentOf[neighbor]; !seen {
					componentOf[neighbor] = count
					queue.PushBack(neighbor)
				}
			}
		}
		count++
	}

	components := make([][]int, count)
	for _, id := range g.NodeIDs() {
		c := componentOf[id]
		components[c] = append(components[c], id)
	}
	return components
}
