// ABOUTME: Prometheus metrics for the event queue, consumer loop, and assessment engine.
// ABOUTME: Implements the recorder contracts of the queue and assess packages.

package metrics

import (
	"net/http"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exposes
type Metrics struct {
	registry *prometheus.Registry

	eventsEnqueued  *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
	scorerDuration  *prometheus.HistogramVec
	assessments     *prometheus.CounterVec
}

// New creates and registers all collectors on the given registry
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		eventsEnqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskrelay_events_enqueued_total",
				Help: "Number of webhook events accepted onto the queue",
			},
			[]string{"event_type"},
		),

		eventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskrelay_events_processed_total",
				Help: "Number of events processed by the consumer loop by outcome",
			},
			[]string{"event_type", "outcome"},
		),

		eventDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskrelay_event_processing_duration_seconds",
				Help:    "Wall time of one event's full pipeline",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"event_type"},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "riskrelay_queue_depth",
				Help: "Number of queued, unprocessed events",
			},
		),

		scorerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskrelay_scorer_duration_seconds",
				Help:    "Wall time of individual scorer invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scorer"},
		),

		assessments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskrelay_assessments_total",
				Help: "Completed risk assessments by overall level",
			},
			[]string{"level"},
		),
	}

	registry.MustRegister(
		m.eventsEnqueued,
		m.eventsProcessed,
		m.eventDuration,
		m.queueDepth,
		m.scorerDuration,
		m.assessments,
	)

	return m
}

// EventEnqueued records one accepted event
func (m *Metrics) EventEnqueued(eventType string) {
	m.eventsEnqueued.WithLabelValues(eventType).Inc()
}

// EventProcessed records one consumer-loop attempt and its duration
func (m *Metrics) EventProcessed(eventType string, duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	m.eventsProcessed.WithLabelValues(eventType, outcome).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

// SetQueueDepth records the current queue depth
func (m *Metrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}

// ScorerDuration records one scorer invocation
func (m *Metrics) ScorerDuration(scorer string, duration time.Duration) {
	m.scorerDuration.WithLabelValues(scorer).Observe(duration.Seconds())
}

// AssessmentCompleted records one finished assessment
func (m *Metrics) AssessmentCompleted(level types.RiskLevel) {
	m.assessments.WithLabelValues(string(level)).Inc()
}

// Handler serves the registry over HTTP
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
