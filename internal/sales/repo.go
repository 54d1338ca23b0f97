package sales

import (
	"context"
	"errors"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sale).Error
}

func (r *repository) CreateSaleItem(ctx context.Context, item *models.SaleItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *repository) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.WithContext(ctx).
		Order("sale_date DESC").
		Order("sale_id DESC").
		Find(&sales).Error
	return sales, err
}

func (r *repository) FindSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Take(&sale).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) FindSaleItems(ctx context.Context, saleID int64) ([]models.SaleItem, error) {
	var items []models.SaleItem
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("sale_item_id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) FindSaleLines(ctx context.Context, saleID int64) ([]SaleLine, error) {
	var lines []SaleLine
	err := r.db.WithContext(ctx).
		Table("sale_items AS si").
		Select("si.sale_item_id, si.sale_id, si.medicine_id, si.quantity, si.unit_price, si.line_total, m.name AS medicine_name").
		Joins("LEFT JOIN medicines m ON m.medicine_id = si.medicine_id").
		Where("si.sale_id = ?", saleID).
		Order("si.sale_item_id ASC").
		Scan(&lines).Error
	return lines, err
}

func (r *repository) FindCustomerName(ctx context.Context, customerID int64) (string, bool, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Select("customer_id", "name").Where("customer_id = ?", customerID).Take(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return customer.Name, true, nil
}

func (r *repository) UpdateSaleHeader(ctx context.Context, saleID int64, header HeaderUpdate) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sale{}).
		Where("sale_id = ?", saleID).
		Updates(map[string]any{
			"customer_id":         header.CustomerID,
			"prescription_number": header.PrescriptionNumber,
			"payment_method":      header.PaymentMethod,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteSaleItems(ctx context.Context, saleID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.SaleItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteSale(ctx context.Context, saleID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("sale_id = ?", saleID).Delete(&models.Sale{})
	return res.RowsAffected, res.Error
}
