package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsStored    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	fetchCycles     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	skippedTriggers prometheus.Counter
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigtrail_events_stored_total",
				Help: "Total number of alert events stored per backend",
			},
			[]string{"backend", "bot_id"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigtrail_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		fetchCycles: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigtrail_fetch_cycles_total",
				Help: "Total number of completed fetch cycles by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sigtrail_fetch_cycle_duration_seconds",
				Help:    "Duration of fetch cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		skippedTriggers: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sigtrail_skipped_triggers_total",
				Help: "Total number of fetch triggers skipped because one was in flight",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sigtrail_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventStored records an alert event stored to a backend.
func (r *Recorder) RecordEventStored(backend, botID string) {
	r.eventsStored.WithLabelValues(backend, botID).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordFetchCycle records a completed fetch cycle and its duration.
func (r *Recorder) RecordFetchCycle(outcome string, d time.Duration) {
	r.fetchCycles.WithLabelValues(outcome).Inc()
	r.fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordSkippedTrigger records a trigger dropped by in-flight dedup.
func (r *Recorder) RecordSkippedTrigger() {
	r.skippedTriggers.Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
