package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// OrderMetrics tracks checkout outcomes and revenue.
type OrderMetrics struct {
	created   *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	amount    *prometheus.HistogramVec
	paid      prometheus.Counter
	cancelled prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gocart_orders_created_total",
			Help: "Orders persisted, by payment method.",
		}, []string{"payment_method"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gocart_orders_rejected_total",
			Help: "Checkout attempts rejected before persistence, by error code.",
		}, []string{"code"}),
		amount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gocart_order_total_amount",
			Help:    "Server computed order totals.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"payment_method"}),
		paid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gocart_orders_paid_total",
			Help: "Orders marked paid by payment confirmation.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gocart_orders_cancelled_total",
			Help: "Orders cancelled, including stale unpaid orders.",
		}),
	}
	reg.MustRegister(m.created, m.rejected, m.amount, m.paid, m.cancelled)
	return m
}

// ObserveCreated records a persisted order and its total.
func (m *OrderMetrics) ObserveCreated(paymentMethod string, total decimal.Decimal) {
	if m == nil || m.created == nil {
		return
	}
	label := normalizeLabel(paymentMethod)
	m.created.WithLabelValues(label).Inc()
	m.amount.WithLabelValues(label).Observe(total.InexactFloat64())
}

// IncRejected counts a checkout that failed before commit.
func (m *OrderMetrics) IncRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) IncPaid() {
	if m == nil || m.paid == nil {
		return
	}
	m.paid.Inc()
}

func (m *OrderMetrics) AddCancelled(n int) {
	if m == nil || m.cancelled == nil || n <= 0 {
		return
	}
	m.cancelled.Add(float64(n))
}
