package propagation

import (
	"container/list"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
)

// Spread is the outcome of one propagation run.
type Spread struct {
	Affected map[int]struct{}
	Trials   int // Bernoulli trials performed
	Shares   int // successful trials
}

// Count returns the number of affected nodes.
func (s *Spread) Count() int { return len(s.Affected) }

// Percentage returns the affected share of total nodes, 0 when total is 0.
func (s *Spread) Percentage(total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(len(s.Affected)) / float64(total)
}

// Simulator spreads messages over a read-only graph.
type Simulator struct {
	graph  *graph.Graph
	params Params
	rng    RandomSource
}

// NewSimulator creates a simulator drawing from rng.
func NewSimulator(g *graph.Graph, params Params, rng RandomSource) *Simulator {
	return &Simulator{graph: g, params: params, rng: rng}
}

// Params returns the simulator's parameters.
func (s *Simulator) Params() Params { return s.params }

// Propagate spreads msg from start and returns the affected node set.
func (s *Simulator) Propagate(msg *Message, start int) map[int]struct{} {
	return s.Trace(msg, start).Affected
}

// Trace runs a breadth-first spread from start. Each neighbor not yet
// affected gets one Bernoulli trial per visit of a predecessor; a success
// bumps the message's share count and enqueues the neighbor. The start node
// is always affected.
func (s *Simulator) Trace(msg *Message, start int) *Spread {
	spread := &Spread{Affected: map[int]struct{}{start: {}}}

	queue := list.New()
	queue.PushBack(start)

	for queue.Len() > 0 {
		current := queue.Remove(queue.Front()).(int)

		for _, neighbor := range s.graph.Neighbors(current) {
			if _, done := spread.Affected[neighbor]; done {
				continue
			}
			spread.Trials++
			if s.rng.Float64() >= s.params.ShareProbability {
				continue
			}
			msg.IncrementShareCount()
			spread.Shares++
			spread.Affected[neighbor] = struct{}{}
			queue.PushBack(neighbor)
		}
	}

	return spread
}
