package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

func TestSalesMetricsRecordsCreatedAndRejected(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSalesMetrics(reg)

	m.SaleCreated("cash", decimal.RequireFromString("31.00"), 2)
	m.SaleCreated("cash", decimal.RequireFromString("9.50"), 1)
	m.SaleRejected("INSUFFICIENT_STOCK")
	m.SaleDeleted()

	if got := sample(t, reg, "medstore_sales_created_total", "payment_method", "cash").GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}
	if got := sample(t, reg, "medstore_sales_rejected_total", "reason", "INSUFFICIENT_STOCK").GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected rejected=1, got %f", got)
	}
	if got := sample(t, reg, "medstore_sale_units_total").GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected 3 units sold, got %f", got)
	}
	if got := sample(t, reg, "medstore_sale_amount").GetHistogram().GetSampleSum(); got != 40.5 {
		t.Fatalf("expected amount sum 40.5, got %f", got)
	}
}

func TestInventoryMetricsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)
	m.SetLowStock(4, 1)
	m.SetExpiry(3, 2)

	if got := sample(t, reg, "medstore_low_stock_medicines", "state", "low").GetGauge().GetValue(); got != 4 {
		t.Fatalf("expected low=4, got %f", got)
	}
	if got := sample(t, reg, "medstore_expiring_medicines", "state", "expired").GetGauge().GetValue(); got != 2 {
		t.Fatalf("expected expired=2, got %f", got)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/sales", 201, 20*time.Millisecond)

	if got := sample(t, reg, "medstore_http_requests_total", "status", "201").GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected one 201, got %f", got)
	}
	if got := sample(t, reg, "medstore_http_request_duration_seconds", "route", "/api/sales").GetHistogram().GetSampleSum(); got <= 0 {
		t.Fatalf("expected latency recorded, got %f", got)
	}
}
