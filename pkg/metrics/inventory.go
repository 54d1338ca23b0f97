package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics exposes stock health as gauges refreshed by the alert job.
type InventoryMetrics struct {
	lowStock *prometheus.GaugeVec
	expiring *prometheus.GaugeVec
}

// NewInventoryMetrics registers inventory gauges on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	lowStock := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_medicines",
		Help:      "Medicines at or below their reorder level.",
	}, []string{"state"})
	expiring := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "expiring_medicines",
		Help:      "Medicines past or near their expiry date.",
	}, []string{"state"})
	reg.MustRegister(lowStock, expiring)
	return &InventoryMetrics{lowStock: lowStock, expiring: expiring}
}

// SetLowStock publishes the low-stock and out-of-stock counts.
func (m *InventoryMetrics) SetLowStock(low, outOfStock int) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.WithLabelValues("low").Set(float64(low))
	m.lowStock.WithLabelValues("out").Set(float64(outOfStock))
}

// SetExpiry publishes the expiring-soon and expired counts.
func (m *InventoryMetrics) SetExpiry(expiringSoon, expired int) {
	if m == nil || m.expiring == nil {
		return
	}
	m.expiring.WithLabelValues("soon").Set(float64(expiringSoon))
	m.expiring.WithLabelValues("expired").Set(float64(expired))
}
