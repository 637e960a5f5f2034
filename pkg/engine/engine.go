// Package engine ties the graph, the community optimizer and the propagation
// simulator together behind the operations callers use: detect communities,
// send and analyze messages, and inspect nodes.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/cluso-infoflow/pkg/algorithms"
	"github.com/dd0wney/cluso-infoflow/pkg/config"
	"github.com/dd0wney/cluso-infoflow/pkg/edgelist"
	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
	"github.com/dd0wney/cluso-infoflow/pkg/propagation"
	"github.com/dd0wney/cluso-infoflow/pkg/telemetry"
)

// DefaultImpactContent is analyzed when AnalyzeMessageImpact gets empty content.
const DefaultImpactContent = "Sample message from target node"

// Engine owns a graph, its community assignment and the message log. All
// methods are safe for concurrent use. Messages returned by the engine must
// not be read while another call may be propagating or flagging them.
type Engine struct {
	mu sync.RWMutex

	graph      *graph.Graph
	optimizer  *algorithms.LocalMoveOptimizer
	last       *algorithms.CommunityDetectionResult
	params     propagation.Params
	paramsErr  error
	classifier *propagation.Classifier
	simulator  *propagation.Simulator
	messages   []*propagation.Message

	seed    uint64
	runID   string
	logger  logging.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer
}

// Impact is the outcome of AnalyzeMessageImpact.
type Impact struct {
	Message          *propagation.Message
	AffectedNodes    []int // sorted
	AffectedCount    int
	SpreadPercentage float64 // affected / total nodes, in [0, 1]
	// Flagged is the classifier verdict. It does not change the message state.
	Flagged bool
	// SourceHasFlagged reports whether any message from the target was explicitly flagged.
	SourceHasFlagged bool
}

// LoadGraph reads an edge list from a path, a .sz path or an s3:// uri.
func LoadGraph(ctx context.Context, location string) (*graph.Graph, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "engine.LoadGraph",
		trace.WithAttributes(attribute.String("source", location)))
	defer span.End()

	g, err := edgelist.NewLoader(logging.DefaultLogger(), nil).Load(ctx, location)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return g, nil
}

// New builds an engine over g. Parameters are derived from the node count
// (or opts.GraphSize) at this point and do not change afterwards.
//
// In dynamic mode an empty graph has no size to scale by. The engine is still
// built so detection can report zero communities, but its parameters stay
// unresolved and ParamsErr returns the reason.
func New(g *graph.Graph, opts Options) (*Engine, error) {
	if g == nil {
		return nil, graph.ConfigError("new engine", "graph is nil")
	}
	if err := algorithms.CheckIDSpace(g); err != nil {
		return nil, err
	}

	params, err := resolveParams(g, opts)
	var paramsErr error
	if err != nil {
		if !unsized(g, opts) {
			return nil, err
		}
		params, paramsErr = propagation.Params{}, err
	}

	rng := opts.Random
	if rng == nil {
		rng = propagation.NewRandomSource(opts.Seed)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	runID := uuid.NewString()

	e := &Engine{
		graph:      g,
		optimizer:  algorithms.NewLocalMoveOptimizer(g, opts.Detect),
		params:     params,
		paramsErr:  paramsErr,
		classifier: propagation.NewClassifier(params.MisinfoSpreadThreshold, opts.Keywords...),
		simulator:  propagation.NewSimulator(g, params, rng),
		seed:       opts.Seed,
		runID:      runID,
		logger:     logger.With(logging.RunID(runID), logging.Component("engine")),
		metrics:    opts.Metrics,
		tracer:     telemetry.Tracer(),
	}

	if paramsErr != nil {
		e.logger.Warn("propagation parameters unresolved", logging.Error(paramsErr))
	}
	e.logger.Info("engine ready",
		logging.String("mode", modeOrDefault(opts.Mode)),
		logging.Nodes(g.NodeCount()),
		logging.Edges(g.EdgeCount()),
		logging.Float64("share_probability", params.ShareProbability),
		logging.Int("shared_threshold", params.SharedThreshold),
		logging.Int("viral_threshold", params.ViralThreshold),
		logging.Float64("misinfo_spread_threshold", params.MisinfoSpreadThreshold))
	return e, nil
}

func modeOrDefault(mode string) string {
	if mode == "" {
		return config.ModeDynamic
	}
	return mode
}

// unsized reports a dynamic-mode engine over an empty graph with no size override.
func unsized(g *graph.Graph, opts Options) bool {
	return modeOrDefault(opts.Mode) == config.ModeDynamic && g.NodeCount() == 0 && opts.GraphSize <= 0
}

func resolveParams(g *graph.Graph, opts Options) (propagation.Params, error) {
	switch modeOrDefault(opts.Mode) {
	case config.ModeFixed:
		return opts.Base, nil
	case config.ModeDynamic:
		n := g.NodeCount()
		if opts.GraphSize > 0 {
			n = opts.GraphSize
		}
		return propagation.DynamicParams(opts.Base, n)
	default:
		return propagation.Params{}, graph.ConfigError("new engine", fmt.Sprintf("unknown mode %q", opts.Mode))
	}
}

// ParamsErr returns the ConfigError that left dynamic parameters unresolved,
// or nil when Params holds real values.
func (e *Engine) ParamsErr() error { return e.paramsErr }

// Graph returns the engine's graph. It must not be modified.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// RunID identifies this engine in logs and spans.
func (e *Engine) RunID() string { return e.runID }

// Params returns the propagation parameters in effect.
func (e *Engine) Params() propagation.Params { return e.params }

// Classifier returns the misinformation classifier.
func (e *Engine) Classifier() *propagation.Classifier { return e.classifier }

// DetectCommunities runs the local-move optimizer and returns the number of
// distinct communities. Repeated calls continue from the current partition.
func (e *Engine) DetectCommunities(ctx context.Context) (int, error) {
	ctx, span := e.tracer.Start(ctx, "engine.DetectCommunities",
		trace.WithAttributes(attribute.String("run_id", e.runID)))
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	timer := logging.StartTimer(e.logger, "communities detected")
	result, err := e.optimizer.Detect(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordDetectionFailure()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		timer.EndError(err)
		return 0, err
	}
	e.last = result

	if e.metrics != nil {
		e.metrics.RecordDetection(timer.Elapsed(), result.Passes, result.Moves, result.CommunityCount, result.Modularity)
	}
	span.SetAttributes(
		attribute.Int("communities", result.CommunityCount),
		attribute.Float64("modularity", result.Modularity),
		attribute.Int("passes", result.Passes),
	)
	timer.End(
		logging.Communities(result.CommunityCount),
		logging.Modularity(result.Modularity),
		logging.Passes(result.Passes),
		logging.Moves(result.Moves),
		logging.Bool("converged", result.Converged))

	return result.CommunityCount, nil
}

// Modularity returns the modularity computed by the last detection, 0 before any.
func (e *Engine) Modularity() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.optimizer.Modularity()
}

// DetectionResult returns the last detection result, or nil.
func (e *Engine) DetectionResult() *algorithms.CommunityDetectionResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Communities groups present nodes by their current community.
func (e *Engine) Communities() []*algorithms.Community {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := &algorithms.CommunityDetectionResult{Assignment: e.optimizer.Assignment()}
	return r.Communities(e.graph.NodeIDs())
}

// CommunityOf returns node's current community.
func (e *Engine) CommunityOf(node int) (int, error) {
	if !e.graph.HasNode(node) {
		return 0, graph.NodeNotFoundError("community of", node)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.optimizer.CommunityOf(node)
}

// GetNodeInfo inspects node against the current partition.
func (e *Engine) GetNodeInfo(node int) (*algorithms.NodeInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	info, err := algorithms.Inspect(e.graph, e.optimizer.Assignment(), node)
	if err != nil {
		e.logger.Warn("inspect failed", logging.NodeID(node), logging.Error(err))
		return nil, err
	}
	return info, nil
}

// send creates a message, appends it to the log and propagates it from
// source. Callers hold the write lock.
func (e *Engine) send(op string, source int, content string) (*propagation.Message, *propagation.Spread, error) {
	if !e.graph.HasNode(source) {
		return nil, nil, graph.NodeNotFoundError(op, source)
	}

	msg := propagation.NewMessage(len(e.messages), content, source, e.params.Thresholds())
	e.messages = append(e.messages, msg)

	start := time.Now()
	spread := e.simulator.Trace(msg, source)
	elapsed := time.Since(start)

	if e.metrics != nil {
		e.metrics.RecordPropagation(msg.State().String(), spread.Count(), elapsed)
	}
	e.logger.Debug("message propagated",
		logging.Operation(op),
		logging.MessageID(msg.ID),
		logging.NodeID(source),
		logging.Affected(spread.Count()),
		logging.Int("shares", msg.ShareCount()),
		logging.State(msg.State()),
		logging.Latency(elapsed))
	return msg, spread, nil
}

// InitiateMessage creates a message at source and propagates it immediately.
func (e *Engine) InitiateMessage(source int, content string) (*propagation.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, _, err := e.send("initiate message", source, content)
	return msg, err
}

// AnalyzeMessageImpact propagates a new message from target and classifies
// it. Empty content is replaced by DefaultImpactContent.
func (e *Engine) AnalyzeMessageImpact(target int, content string) (*Impact, error) {
	if content == "" {
		content = DefaultImpactContent
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	msg, spread, err := e.send("analyze impact", target, content)
	if err != nil {
		return nil, err
	}

	pct := spread.Percentage(e.graph.NodeCount())
	impact := &Impact{
		Message:          msg,
		AffectedNodes:    sortedKeys(spread.Affected),
		AffectedCount:    spread.Count(),
		SpreadPercentage: pct,
		Flagged:          e.classifier.IsMisinformation(content, pct),
		SourceHasFlagged: e.hasFlagged(target),
	}

	if e.metrics != nil {
		e.metrics.RecordImpact(pct, impact.Flagged)
	}
	e.logger.Info("message impact analyzed",
		logging.MessageID(msg.ID),
		logging.NodeID(target),
		logging.Affected(impact.AffectedCount),
		logging.Spread(pct),
		logging.Bool("misinformation", impact.Flagged),
		logging.Bool("source_has_flagged", impact.SourceHasFlagged))
	return impact, nil
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Messages returns the message log in id order.
func (e *Engine) Messages() []*propagation.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*propagation.Message(nil), e.messages...)
}

// Message returns the message with the given id.
func (e *Engine) Message(id int) (*propagation.Message, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.message("message", id)
}

func (e *Engine) message(op string, id int) (*propagation.Message, error) {
	if id < 0 || id >= len(e.messages) {
		return nil, graph.NewError(op, graph.ErrRange).Context(fmt.Sprintf("message %d", id)).Err()
	}
	return e.messages[id], nil
}

// FlagMessage marks a logged message as misinformation.
func (e *Engine) FlagMessage(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	msg, err := e.message("flag message", id)
	if err != nil {
		return err
	}
	if msg.IsFlagged() {
		return nil
	}
	msg.Flag()

	if e.metrics != nil {
		e.metrics.RecordFlag()
	}
	e.logger.Info("message flagged", logging.MessageID(id), logging.NodeID(msg.SourceNode))
	return nil
}

// HasFlaggedMessages reports whether any logged message from node is flagged.
func (e *Engine) HasFlaggedMessages(node int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasFlagged(node)
}

func (e *Engine) hasFlagged(node int) bool {
	for _, m := range e.messages {
		if m.SourceNode == node && m.IsFlagged() {
			return true
		}
	}
	return false
}

// SimulateBatch runs independent propagations concurrently. The runs do not
// touch the message log. Requests without a seed get distinct seeds derived
// from the engine seed, so a seeded engine gives repeatable batches.
func (e *Engine) SimulateBatch(ctx context.Context, requests []propagation.Request, workers int) ([]*propagation.Result, error) {
	ctx, span := e.tracer.Start(ctx, "engine.SimulateBatch",
		trace.WithAttributes(attribute.Int("requests", len(requests))))
	defer span.End()

	base := e.seed
	if base == 0 {
		base = uint64(time.Now().UnixNano())
	}
	reqs := append([]propagation.Request(nil), requests...)
	for i := range reqs {
		if reqs[i].Seed == 0 {
			reqs[i].Seed = propagation.DeriveSeed(base, i)
		}
	}

	// Detection rewrites the assignment only; the graph itself is never
	// mutated, so a read lock is enough.
	e.mu.RLock()
	defer e.mu.RUnlock()

	timer := logging.StartTimer(e.logger, "batch simulated", logging.Int("requests", len(reqs)))
	results, err := propagation.SimulateBatch(ctx, e.graph, e.params, e.classifier, reqs, workers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		timer.EndError(err)
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordBatch(len(results))
	}
	timer.End()
	return results, nil
}
