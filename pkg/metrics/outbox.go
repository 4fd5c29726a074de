package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outbox relay outcomes for outbox_events_relayed_total.
const (
	RelayPublished  = "published"
	RelayRetry      = "retry"
	RelayDeadLetter = "dead_letter"
)

// OutboxMetrics covers the outbox publisher loop.
type OutboxMetrics struct {
	relayed *prometheus.CounterVec
	lag     prometheus.Histogram
	batch   prometheus.Histogram
}

// NewOutboxMetrics registers on reg; a nil reg yields a no-op recorder.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	m := &OutboxMetrics{
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_relayed_total",
			Help: "Outbox rows handled by the publisher, by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		lag: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_publish_lag_seconds",
			Help:    "Time from outbox insert to successful publish.",
			Buckets: []float64{.1, .5, 1, 2, 5, 15, 60, 300, 1800},
		}),
		batch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outbox_batch_size",
			Help:    "Rows claimed per non-empty publisher poll.",
			Buckets: prometheus.LinearBuckets(1, 10, 10),
		}),
	}
	reg.MustRegister(m.relayed, m.lag, m.batch)
	return m
}

func (m *OutboxMetrics) Relayed(eventType, outcome string) {
	if m == nil || m.relayed == nil {
		return
	}
	m.relayed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// ObserveLag records how long a row waited before it was published.
func (m *OutboxMetrics) ObserveLag(createdAt, publishedAt time.Time) {
	if m == nil || m.lag == nil || createdAt.IsZero() {
		return
	}
	if lag := publishedAt.Sub(createdAt); lag >= 0 {
		m.lag.Observe(lag.Seconds())
	}
}

func (m *OutboxMetrics) ObserveBatch(size int) {
	if m == nil || m.batch == nil || size <= 0 {
		return
	}
	m.batch.Observe(float64(size))
}
