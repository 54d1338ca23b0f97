package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is the header of a point-of-sale transaction. TotalAmount is derived
// from its items at creation and never recomputed.
type Sale struct {
	ID                 int64           `gorm:"column:sale_id;primaryKey;autoIncrement"`
	CustomerID         *int64          `gorm:"column:customer_id"`
	PrescriptionNumber *string         `gorm:"column:prescription_number"`
	PaymentMethod      string          `gorm:"column:payment_method;not null"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	SaleDate           time.Time       `gorm:"column:sale_date;not null"`
	Customer           *Customer       `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:SET NULL"`
	Items              []SaleItem      `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE"`
}

// SaleItem snapshots the unit price charged for one medicine line.
type SaleItem struct {
	ID         int64           `gorm:"column:sale_item_id;primaryKey;autoIncrement"`
	SaleID     int64           `gorm:"column:sale_id;not null;index"`
	MedicineID int64           `gorm:"column:medicine_id;not null;index"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	Medicine   *Medicine       `gorm:"foreignKey:MedicineID;references:ID;constraint:OnDelete:RESTRICT"`
}
