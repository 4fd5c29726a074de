package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Reconciliation outcomes reported on guest_reconciliations_total.
const (
	OutcomeLinked        = "linked"
	OutcomeNoGuest       = "no_guest"
	OutcomeNoOrders      = "no_orders"
	OutcomeAlreadyLinked = "already_linked"
	OutcomeFailed        = "failed"
)

// CheckoutMetrics counts placed orders, checkout failures and guest links.
type CheckoutMetrics struct {
	orders          *prometheus.CounterVec
	failures        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	reconciliations *prometheus.CounterVec
	linkedOrders    prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders placed, by identity path and payment method.",
	}, []string{"path", "payment_method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts that ended in an error, by error code.",
	}, []string{"code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Time spent placing an order.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "guest_reconciliations_total",
		Help: "Guest reconciliation attempts by outcome.",
	}, []string{"outcome"})
	linked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "guest_orders_linked_total",
		Help: "Guest orders moved onto an account.",
	})
	reg.MustRegister(orders, failures, duration, reconciliations, linked)
	return &CheckoutMetrics{
		orders:          orders,
		failures:        failures,
		duration:        duration,
		reconciliations: reconciliations,
		linkedOrders:    linked,
	}
}

func (m *CheckoutMetrics) IncOrder(path, paymentMethod string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(path), normalizeLabel(paymentMethod)).Inc()
}

func (m *CheckoutMetrics) IncFailure(code string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *CheckoutMetrics) ObserveCheckout(path string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(path)).Observe(duration.Seconds())
}

// RecordReconciliation counts one attempt and, when linked, the orders it moved.
func (m *CheckoutMetrics) RecordReconciliation(outcome string, linked int) {
	if m == nil || m.reconciliations == nil {
		return
	}
	m.reconciliations.WithLabelValues(normalizeLabel(outcome)).Inc()
	if linked > 0 && m.linkedOrders != nil {
		m.linkedOrders.Add(float64(linked))
	}
}
