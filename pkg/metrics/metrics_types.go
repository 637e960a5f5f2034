// Package metrics exposes Prometheus instruments for community detection,
// message propagation and graph loading.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "infoflow"

// Registry holds all metrics for the application
type Registry struct {
	// Detection Metrics
	DetectionRunsTotal *prometheus.CounterVec
	DetectionDuration  prometheus.Histogram
	DetectionPasses    prometheus.Histogram
	NodeMovesTotal     prometheus.Counter
	Communities        prometheus.Gauge
	Modularity         prometheus.Gauge

	// Propagation Metrics
	MessagesTotal         *prometheus.CounterVec
	AffectedNodes         prometheus.Histogram
	SpreadRatio           prometheus.Histogram
	MisinformationTotal   *prometheus.CounterVec
	FlaggedMessagesTotal  prometheus.Counter
	PropagationDuration   prometheus.Histogram
	BatchSimulationsTotal prometheus.Counter

	// Loader Metrics
	GraphLoadsTotal   *prometheus.CounterVec
	GraphLoadDuration *prometheus.HistogramVec
	EdgesLoadedTotal  prometheus.Counter
	GraphNodes        prometheus.Gauge
	GraphEdges        prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initDetectionMetrics()
	r.initPropagationMetrics()
	r.initLoaderMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
