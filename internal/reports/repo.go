package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/medstore/medstore-backend/pkg/types"
)

type medicineRevenueRow struct {
	MedicineID   int64
	MedicineName *string
	Quantity     int64
	Revenue      decimal.Decimal
}

type revenueTotals struct {
	SaleCount int64
	Revenue   decimal.Decimal
}

type inventoryTotals struct {
	MedicineCount int64
	TotalUnits    int64
	TotalValue    decimal.Decimal
}

type repository struct {
	db *gorm.DB
}

func newRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r *repository) lowStock(ctx context.Context) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).
		Where("stock_qty <= reorder_level").
		Order("stock_qty ASC").
		Order("medicine_id ASC").
		Find(&medicines).Error
	return medicines, err
}

func (r *repository) expiringBetween(ctx context.Context, from, to types.Date) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", from, to).
		Order("expiry_date ASC").
		Order("medicine_id ASC").
		Find(&medicines).Error
	return medicines, err
}

func (r *repository) expiredBefore(ctx context.Context, day types.Date) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", day).
		Order("expiry_date ASC").
		Order("medicine_id ASC").
		Find(&medicines).Error
	return medicines, err
}

func (r *repository) revenueTotals(ctx context.Context, from, to time.Time) (revenueTotals, error) {
	var totals revenueTotals
	err := r.db.WithContext(ctx).
		Table("sales").
		Select("COUNT(*) AS sale_count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Scan(&totals).Error
	return totals, err
}

func (r *repository) revenueByMedicine(ctx context.Context, from, to time.Time) ([]medicineRevenueRow, error) {
	var rows []medicineRevenueRow
	err := r.db.WithContext(ctx).
		Table("sale_items AS si").
		Select("si.medicine_id, m.name AS medicine_name, SUM(si.quantity) AS quantity, SUM(si.line_total) AS revenue").
		Joins("JOIN sales s ON s.sale_id = si.sale_id").
		Joins("LEFT JOIN medicines m ON m.medicine_id = si.medicine_id").
		Where("s.sale_date >= ? AND s.sale_date < ?", from, to).
		Group("si.medicine_id, m.name").
		Order("revenue DESC").
		Order("si.medicine_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) inventoryTotals(ctx context.Context) (inventoryTotals, error) {
	var totals inventoryTotals
	err := r.db.WithContext(ctx).
		Table("medicines").
		Select("COUNT(*) AS medicine_count, COALESCE(SUM(stock_qty), 0) AS total_units, COALESCE(SUM(stock_qty * unit_price), 0) AS total_value").
		Scan(&totals).Error
	return totals, err
}
