package sales

import (
	"context"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the sales and sale_items tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSale(ctx context.Context, sale *models.Sale) error
	CreateSaleItem(ctx context.Context, item *models.SaleItem) error
	ListSales(ctx context.Context) ([]models.Sale, error)
	FindSale(ctx context.Context, saleID int64) (*models.Sale, error)
	FindSaleItems(ctx context.Context, saleID int64) ([]models.SaleItem, error)
	FindSaleLines(ctx context.Context, saleID int64) ([]SaleLine, error)
	FindCustomerName(ctx context.Context, customerID int64) (string, bool, error)
	UpdateSaleHeader(ctx context.Context, saleID int64, header HeaderUpdate) (int64, error)
	DeleteSaleItems(ctx context.Context, saleID int64) (int64, error)
	DeleteSale(ctx context.Context, saleID int64) (int64, error)
}

// SaleLine is a sale item joined with the medicine name, when it still exists.
type SaleLine struct {
	SaleItemID   int64           `gorm:"column:sale_item_id"`
	SaleID       int64           `gorm:"column:sale_id"`
	MedicineID   int64           `gorm:"column:medicine_id"`
	MedicineName *string         `gorm:"column:medicine_name"`
	Quantity     int             `gorm:"column:quantity"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price"`
	LineTotal    decimal.Decimal `gorm:"column:line_total"`
}

// HeaderUpdate lists the only columns a sale update may touch.
type HeaderUpdate struct {
	CustomerID         *int64
	PrescriptionNumber *string
	PaymentMethod      string
}
