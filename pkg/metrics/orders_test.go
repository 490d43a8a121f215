package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func TestOrderMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.ObserveCreated("STRIPE", decimal.RequireFromString("30.00"))
	m.ObserveCreated("STRIPE", decimal.RequireFromString("12.50"))
	m.IncRejected("NOT_FOUND")
	m.IncPaid()
	m.AddCancelled(3)
	m.AddCancelled(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "gocart_orders_created_total", "payment_method", "STRIPE"); err != nil || got != 2 {
		t.Fatalf("expected created=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "gocart_orders_rejected_total", "code", "NOT_FOUND"); err != nil || got != 1 {
		t.Fatalf("expected rejected=1, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "gocart_order_total_amount", "payment_method", "STRIPE"); err != nil || got != 42.5 {
		t.Fatalf("expected amount sum 42.5, got %f (%v)", got, err)
	}
	cancelled := findMetricFamily(mfs, "gocart_orders_cancelled_total")
	if cancelled == nil || cancelled.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("expected cancelled=3")
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var orders *OrderMetrics
	orders.ObserveCreated("COD", decimal.NewFromInt(1))
	orders.IncPaid()

	httpMetrics := NewHTTPMetrics(nil)
	httpMetrics.Observe("/x", "GET", 200, time.Millisecond)
}

func TestHTTPMetricsUsesUnmatchedRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("", "GET", 404, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "gocart_http_requests_total", "route", "unmatched"); err != nil || got != 1 {
		t.Fatalf("expected unmatched=1, got %f (%v)", got, err)
	}
}
