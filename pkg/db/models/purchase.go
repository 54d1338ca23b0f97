package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase records stock received from a supplier.
type Purchase struct {
	ID            int64           `gorm:"column:purchase_id;primaryKey;autoIncrement"`
	SupplierName  string          `gorm:"column:supplier_name;not null"`
	InvoiceNumber *string         `gorm:"column:invoice_number"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PurchaseDate  time.Time       `gorm:"column:purchase_date;not null"`
	Items         []PurchaseItem  `gorm:"foreignKey:PurchaseID;references:ID;constraint:OnDelete:CASCADE"`
}

type PurchaseItem struct {
	ID         int64           `gorm:"column:purchase_item_id;primaryKey;autoIncrement"`
	PurchaseID int64           `gorm:"column:purchase_id;not null;index"`
	MedicineID int64           `gorm:"column:medicine_id;not null;index"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitCost   decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Medicine   *Medicine       `gorm:"foreignKey:MedicineID;references:ID;constraint:OnDelete:RESTRICT"`
}
