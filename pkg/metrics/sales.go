package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "medstore"

// SalesMetrics tracks point-of-sale throughput and rejections.
type SalesMetrics struct {
	created  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	deleted  prometheus.Counter
	amount   prometheus.Histogram
	units    prometheus.Counter
}

// NewSalesMetrics registers the sales metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_created_total",
		Help:      "Sales committed, by payment method.",
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_rejected_total",
		Help:      "Sales rolled back, by error code.",
	}, []string{"reason"})
	deleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_deleted_total",
		Help:      "Sales deleted with stock restored.",
	})
	amount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sale_amount",
		Help:      "Sale totals in store currency.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	units := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sale_units_total",
		Help:      "Medicine units sold.",
	})
	reg.MustRegister(created, rejected, deleted, amount, units)
	return &SalesMetrics{
		created:  created,
		rejected: rejected,
		deleted:  deleted,
		amount:   amount,
		units:    units,
	}
}

// SaleCreated records a committed sale.
func (m *SalesMetrics) SaleCreated(paymentMethod string, total decimal.Decimal, units int) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	m.amount.Observe(total.InexactFloat64())
	m.units.Add(float64(units))
}

// SaleRejected records a sale that was rolled back.
func (m *SalesMetrics) SaleRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// SaleDeleted records a deleted sale.
func (m *SalesMetrics) SaleDeleted() {
	if m == nil || m.deleted == nil {
		return
	}
	m.deleted.Inc()
}
