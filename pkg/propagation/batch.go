package propagation

import (
	"context"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/parallel"
)

// Request describes one independent propagation run.
type Request struct {
	Source  int
	Content string
	Seed    uint64 // 0 draws a seed from the clock
}

// Result is the outcome of one batch request. Message ids are request indexes.
type Result struct {
	Message        *Message
	Spread         *Spread
	Percentage     float64
	Misinformation bool
}

// SimulateBatch runs every request concurrently. Each run owns its message
// and random source; the graph is only read. Results are in request order.
func SimulateBatch(ctx context.Context, g *graph.Graph, params Params, classifier *Classifier, requests []Request, workers int) ([]*Result, error) {
	for _, req := range requests {
		if !g.HasNode(req.Source) {
			return nil, graph.NodeNotFoundError("simulate batch", req.Source)
		}
	}

	results := make([]*Result, len(requests))
	total := g.NodeCount()

	jobs := make([]parallel.Job, len(requests))
	for i := range requests {
		jobs[i] = func(ctx context.Context, index int) error {
			req := requests[index]
			msg := NewMessage(index, req.Content, req.Source, params.Thresholds())
			sim := NewSimulator(g, params, NewRandomSource(req.Seed))

			spread := sim.Trace(msg, req.Source)
			pct := spread.Percentage(total)
			results[index] = &Result{
				Message:        msg,
				Spread:         spread,
				Percentage:     pct,
				Misinformation: classifier.IsMisinformation(req.Content, pct),
			}
			return nil
		}
	}

	if err := parallel.RunJobs(ctx, workers, jobs); err != nil {
		return nil, err
	}
	return results, nil
}
