package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medstore/medstore-backend/pkg/types"
)

// Medicine is a stocked catalogue entry; stock_qty is decremented by sales
// and incremented by purchases.
type Medicine struct {
	ID           int64           `gorm:"column:medicine_id;primaryKey;autoIncrement"`
	Name         string          `gorm:"column:name;not null"`
	GenericName  string          `gorm:"column:generic_name"`
	Category     string          `gorm:"column:category"`
	Manufacturer string          `gorm:"column:manufacturer"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	StockQty     int             `gorm:"column:stock_qty;not null;default:0"`
	ReorderLevel int             `gorm:"column:reorder_level;not null;default:0"`
	ExpiryDate   *types.Date     `gorm:"column:expiry_date;type:date"`
	BatchNumber  string          `gorm:"column:batch_number"`
	Description  string          `gorm:"column:description"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
