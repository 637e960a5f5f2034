package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPropagationMetrics() {
	r.MessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Propagated messages by final state",
		},
		[]string{"state"},
	)

	r.AffectedNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "affected_nodes",
			Help:      "Nodes reached by a single propagation",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	r.SpreadRatio = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "spread_ratio",
			Help:      "Affected share of all nodes per analyzed message",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	r.MisinformationTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misinformation_verdicts_total",
			Help:      "Classifier verdicts on analyzed messages",
		},
		[]string{"verdict"},
	)

	r.FlaggedMessagesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flagged_messages_total",
			Help:      "Messages explicitly flagged as misinformation",
		},
	)

	r.PropagationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "propagation_duration_seconds",
			Help:      "Wall time of a single propagation",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
	)

	r.BatchSimulationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_simulations_total",
			Help:      "Independent runs executed by batch simulation",
		},
	)
}
