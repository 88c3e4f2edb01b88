// Package metrics holds the Prometheus instruments of the ingestion pipeline and the result sink.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "customer_insights"

// Label values
const (
	ModeSingle = "single"
	ModeBatch  = "batch"

	OutcomeDone     = "done"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"

	StepDispatch   = "dispatch"
	StepInvalidate = "invalidate"
	StepBroadcast  = "broadcast"

	ChunkCommitted = "committed"
	ChunkAborted   = "aborted"

	ResultApplied = "applied"
	ResultSkipped = "skipped"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics are the service instruments. All methods are safe on a nil receiver.
type Metrics struct {
	// Labels: mode, outcome
	IngestionTotal *prometheus.CounterVec

	// Labels: mode
	IngestionDuration *prometheus.HistogramVec

	// Labels: step
	SideEffectFailures *prometheus.CounterVec

	// Labels: outcome
	BatchChunks *prometheus.CounterVec

	RealtimeSubscribers   prometheus.Gauge
	RealtimeDroppedEvents prometheus.Counter

	// Labels: outcome
	AnalysisResultsApplied *prometheus.CounterVec
}

// New registers the instruments on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_total",
			Help:      "Interactions ingested by mode and terminal outcome",
		}, []string{"mode", "outcome"}),

		IngestionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Duration of single and batch ingestion calls",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"mode"}),

		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Failed post-commit steps by step",
		}, []string{"step"}),

		BatchChunks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_chunks_total",
			Help:      "Batch chunks by outcome",
		}, []string{"outcome"}),

		RealtimeSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers",
			Help:      "Connected real-time subscribers",
		}),

		RealtimeDroppedEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_dropped_events_total",
			Help:      "Events dropped because a subscriber buffer was full",
		}),

		AnalysisResultsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_results_applied_total",
			Help:      "Analysis results handled by the result sink by outcome",
		}, []string{"outcome"}),
	}
}

// Ingested adds n terminal ingestion outcomes
func (m *Metrics) Ingested(mode, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.IngestionTotal.WithLabelValues(mode, outcome).Add(float64(n))
}

func (m *Metrics) ObserveDuration(mode string, seconds float64) {
	if m == nil {
		return
	}
	m.IngestionDuration.WithLabelValues(mode).Observe(seconds)
}

func (m *Metrics) SideEffectFailed(step string) {
	if m == nil {
		return
	}
	m.SideEffectFailures.WithLabelValues(step).Inc()
}

func (m *Metrics) Chunk(outcome string) {
	if m == nil {
		return
	}
	m.BatchChunks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.RealtimeSubscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.RealtimeSubscribers.Dec()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.RealtimeDroppedEvents.Inc()
}

// ResultsHandled adds n results of one outcome
func (m *Metrics) ResultsHandled(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AnalysisResultsApplied.WithLabelValues(outcome).Add(float64(n))
}
