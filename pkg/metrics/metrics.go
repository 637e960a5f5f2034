package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordDetection records a finished detection run
func (r *Registry) RecordDetection(duration time.Duration, passes, moves, communities int, modularity float64) {
	r.DetectionRunsTotal.WithLabelValues(StatusOK).Inc()
	r.DetectionDuration.Observe(duration.Seconds())
	r.DetectionPasses.Observe(float64(passes))
	r.NodeMovesTotal.Add(float64(moves))
	r.Communities.Set(float64(communities))
	r.Modularity.Set(modularity)
}

// RecordDetectionFailure counts a detection run that returned an error
func (r *Registry) RecordDetectionFailure() {
	r.DetectionRunsTotal.WithLabelValues(StatusError).Inc()
}

// RecordPropagation records one propagated message
func (r *Registry) RecordPropagation(state string, affected int, duration time.Duration) {
	r.MessagesTotal.WithLabelValues(state).Inc()
	r.AffectedNodes.Observe(float64(affected))
	r.PropagationDuration.Observe(duration.Seconds())
}

// RecordImpact records the classifier verdict for an analyzed message
func (r *Registry) RecordImpact(spread float64, misinformation bool) {
	r.SpreadRatio.Observe(spread)
	verdict := "clean"
	if misinformation {
		verdict = "misinformation"
	}
	r.MisinformationTotal.WithLabelValues(verdict).Inc()
}

// RecordFlag counts an explicit flag
func (r *Registry) RecordFlag() {
	r.FlaggedMessagesTotal.Inc()
}

// RecordBatch counts batch simulation runs
func (r *Registry) RecordBatch(runs int) {
	r.BatchSimulationsTotal.Add(float64(runs))
}

// RecordGraphLoad records a load attempt from a source kind
func (r *Registry) RecordGraphLoad(source string, duration time.Duration, nodes, edges int, err error) {
	if err != nil {
		r.GraphLoadsTotal.WithLabelValues(source, StatusError).Inc()
		return
	}
	r.GraphLoadsTotal.WithLabelValues(source, StatusOK).Inc()
	r.GraphLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	r.EdgesLoadedTotal.Add(float64(edges))
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// UpdateSystemMetrics samples runtime statistics
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}

// WriteTextfile samples system metrics and writes the registry in the text
// exposition format, for node_exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}
