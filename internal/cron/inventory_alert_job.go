package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/medstore/medstore-backend/internal/medicines"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/metrics"
)

const defaultExpiryWindowDays = 30

type inventoryReports interface {
	LowStock(ctx context.Context) ([]medicines.MedicineRow, error)
	Expiring(ctx context.Context, withinDays int) ([]medicines.MedicineRow, error)
	Expired(ctx context.Context) ([]medicines.MedicineRow, error)
}

type InventoryAlertJobParams struct {
	Logger           *logger.Logger
	Reports          inventoryReports
	Metrics          *metrics.InventoryMetrics
	ExpiryWindowDays int
}

// NewInventoryAlertJob reports medicines that need reordering or are close
// to expiry, through logs and gauges.
func NewInventoryAlertJob(params InventoryAlertJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("reports service required")
	}
	window := params.ExpiryWindowDays
	if window <= 0 {
		window = defaultExpiryWindowDays
	}
	return &inventoryAlertJob{
		logg:    params.Logger,
		reports: params.Reports,
		metrics: params.Metrics,
		window:  window,
	}, nil
}

type inventoryAlertJob struct {
	logg    *logger.Logger
	reports inventoryReports
	metrics *metrics.InventoryMetrics
	window  int
}

func (j *inventoryAlertJob) Name() string { return "inventory-alerts" }

func (j *inventoryAlertJob) Run(ctx context.Context) error {
	var errs error

	low, err := j.reports.LowStock(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("low stock: %w", err))
	} else {
		out := 0
		for _, m := range low {
			if m.StockQty == 0 {
				out++
			}
			j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
				"medicine_id":   m.MedicineID,
				"medicine_name": m.Name,
				"stock_qty":     m.StockQty,
				"reorder_level": m.ReorderLevel,
			}), "inventory.low_stock")
		}
		j.metrics.SetLowStock(len(low)-out, out)
	}

	expiring, expErr := j.reports.Expiring(ctx, j.window)
	if expErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("expiring: %w", expErr))
	}
	expired, expiredErr := j.reports.Expired(ctx)
	if expiredErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("expired: %w", expiredErr))
	}
	if expErr == nil && expiredErr == nil {
		for _, m := range expired {
			j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
				"medicine_id":   m.MedicineID,
				"medicine_name": m.Name,
				"expiry_date":   m.ExpiryDate,
				"stock_qty":     m.StockQty,
			}), "inventory.expired")
		}
		j.metrics.SetExpiry(len(expiring), len(expired))
	}

	if errs != nil {
		return errs
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"low_stock":   len(low),
		"expiring":    len(expiring),
		"expired":     len(expired),
		"window_days": j.window,
	}), "inventory alerts complete")
	return nil
}
