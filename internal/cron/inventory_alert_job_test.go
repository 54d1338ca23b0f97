package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/multierr"

	"github.com/medstore/medstore-backend/internal/medicines"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/metrics"
)

type stubReports struct {
	low, expiring, expired []medicines.MedicineRow
	lowErr, expiredErr     error
	window                 int
}

func (s *stubReports) LowStock(context.Context) ([]medicines.MedicineRow, error) {
	return s.low, s.lowErr
}

func (s *stubReports) Expiring(_ context.Context, withinDays int) ([]medicines.MedicineRow, error) {
	s.window = withinDays
	return s.expiring, nil
}

func (s *stubReports) Expired(context.Context) ([]medicines.MedicineRow, error) {
	return s.expired, s.expiredErr
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name, state string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelValue(metric, "state") == state {
				return metric.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("gauge %s{state=%q} not found", name, state)
	return 0
}

func labelValue(metric *dto.Metric, name string) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}

func TestInventoryAlertJobPublishesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	reports := &stubReports{
		low:      []medicines.MedicineRow{{MedicineID: 1, StockQty: 0}, {MedicineID: 2, StockQty: 3}, {MedicineID: 3, StockQty: 1}},
		expiring: []medicines.MedicineRow{{MedicineID: 4}},
		expired:  []medicines.MedicineRow{{MedicineID: 5}, {MedicineID: 6}},
	}
	job, err := NewInventoryAlertJob(InventoryAlertJobParams{
		Logger:  logger.Nop(),
		Reports: reports,
		Metrics: metrics.NewInventoryMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if reports.window != defaultExpiryWindowDays {
		t.Fatalf("expected default window, got %d", reports.window)
	}
	if got := gaugeValue(t, reg, "medstore_low_stock_medicines", "low"); got != 2 {
		t.Fatalf("expected 2 low, got %v", got)
	}
	if got := gaugeValue(t, reg, "medstore_low_stock_medicines", "out"); got != 1 {
		t.Fatalf("expected 1 out of stock, got %v", got)
	}
	if got := gaugeValue(t, reg, "medstore_expiring_medicines", "soon"); got != 1 {
		t.Fatalf("expected 1 expiring, got %v", got)
	}
	if got := gaugeValue(t, reg, "medstore_expiring_medicines", "expired"); got != 2 {
		t.Fatalf("expected 2 expired, got %v", got)
	}
}

func TestInventoryAlertJobCombinesErrors(t *testing.T) {
	job, err := NewInventoryAlertJob(InventoryAlertJobParams{
		Logger:           logger.Nop(),
		Reports:          &stubReports{lowErr: errors.New("db down"), expiredErr: errors.New("db down")},
		ExpiryWindowDays: 7,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	err = job.Run(context.Background())
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d (%v)", got, err)
	}
}

func TestNewInventoryAlertJobRequiresDeps(t *testing.T) {
	if _, err := NewInventoryAlertJob(InventoryAlertJobParams{Reports: &stubReports{}}); err == nil {
		t.Fatalf("expected logger error")
	}
	if _, err := NewInventoryAlertJob(InventoryAlertJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatalf("expected reports error")
	}
}
