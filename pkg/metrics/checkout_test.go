package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCheckoutMetricsCountsOrdersAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.IncOrder("guest", "COD")
	m.IncOrder("guest", "COD")
	m.IncFailure("VALIDATION_ERROR")
	m.ObserveCheckout("guest", 40*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_orders_total", "path", "guest"); err != nil {
		t.Fatalf("fetch orders: %v", err)
	} else if got != 2 {
		t.Fatalf("expected orders=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "checkout_failures_total", "code", "VALIDATION_ERROR"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "path", "guest"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestCheckoutMetricsReconciliation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.RecordReconciliation(OutcomeLinked, 3)
	m.RecordReconciliation(OutcomeNoGuest, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "guest_reconciliations_total", "outcome", OutcomeLinked); err != nil || got != 1 {
		t.Fatalf("expected linked=1, got %f err=%v", got, err)
	}
	family := findMetricFamily(mfs, "guest_orders_linked_total")
	if family == nil || len(family.GetMetric()) != 1 {
		t.Fatalf("guest_orders_linked_total missing")
	}
	if got := family.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected 3 linked orders, got %f", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncOrder("auth", "STRIPE")
	m.RecordReconciliation(OutcomeFailed, 0)

	empty := NewCheckoutMetrics(nil)
	empty.IncFailure("x")
}
