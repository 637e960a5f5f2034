package edgelist

import (
	"context"
	"strings"
	"time"

	"github.com/dd0wney/cluso-infoflow/pkg/graph"
	"github.com/dd0wney/cluso-infoflow/pkg/logging"
	"github.com/dd0wney/cluso-infoflow/pkg/metrics"
)

// Source kinds used as metric labels.
const (
	KindFile     = "file"
	KindSnappy   = "snappy"
	KindS3       = "s3"
	KindPostgres = "postgres"
)

// Loader resolves a source location to a graph, logging and counting each load.
type Loader struct {
	Logger  logging.Logger
	Metrics *metrics.Registry // optional

	// S3 is used for s3:// locations. When nil a client is built from the
	// default AWS chain on first use.
	S3       ObjectGetter
	S3Region string
}

// NewLoader creates a loader with the given logger and metrics registry.
func NewLoader(logger logging.Logger, reg *metrics.Registry) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{Logger: logger, Metrics: reg}
}

// Kind classifies a location.
func Kind(location string) string {
	switch {
	case strings.HasPrefix(location, S3Scheme):
		return KindS3
	case strings.HasSuffix(location, SnappySuffix):
		return KindSnappy
	default:
		return KindFile
	}
}

// Load reads a local path, a .sz path or an s3:// uri.
func (l *Loader) Load(ctx context.Context, location string) (*graph.Graph, error) {
	kind := Kind(location)
	return l.observe(kind, location, func() (*graph.Graph, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if kind != KindS3 {
			return LoadFile(location)
		}
		if l.S3 == nil {
			client, err := NewS3Client(ctx, l.S3Region)
			if err != nil {
				return nil, graph.IOError("s3 client", location, err)
			}
			l.S3 = client
		}
		return LoadS3(ctx, l.S3, location)
	})
}

// LoadPostgres reads the table described by src through q.
func (l *Loader) LoadPostgres(ctx context.Context, q Querier, src PostgresSource) (*graph.Graph, error) {
	return l.observe(KindPostgres, src.String(), func() (*graph.Graph, error) {
		return LoadPostgres(ctx, q, src)
	})
}

func (l *Loader) observe(kind, location string, load func() (*graph.Graph, error)) (*graph.Graph, error) {
	start := time.Now()
	g, err := load()
	elapsed := time.Since(start)

	if err != nil {
		if l.Metrics != nil {
			l.Metrics.RecordGraphLoad(kind, elapsed, 0, 0, err)
		}
		l.Logger.Error("graph load failed",
			logging.Source(location), logging.String("kind", kind), logging.Latency(elapsed), logging.Error(err))
		return nil, err
	}

	if l.Metrics != nil {
		l.Metrics.RecordGraphLoad(kind, elapsed, g.NodeCount(), g.EdgeCount(), nil)
	}
	l.Logger.Info("graph loaded",
		logging.Source(location), logging.String("kind", kind),
		logging.Nodes(g.NodeCount()), logging.Edges(g.EdgeCount()), logging.Latency(elapsed))
	return g, nil
}
