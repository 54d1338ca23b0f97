package medicines

import (
	"encoding/json"
	"time"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/medstore/medstore-backend/pkg/types"
)

// MedicineRow mirrors the medicines table as served to clients.
type MedicineRow struct {
	MedicineID   int64       `json:"medicine_id"`
	Name         string      `json:"name"`
	GenericName  string      `json:"generic_name"`
	Category     string      `json:"category"`
	Manufacturer string      `json:"manufacturer"`
	UnitPrice    json.Number `json:"unit_price"`
	StockQty     int         `json:"stock_qty"`
	ReorderLevel int         `json:"reorder_level"`
	ExpiryDate   *types.Date `json:"expiry_date"`
	BatchNumber  string      `json:"batch_number"`
	Description  string      `json:"description"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// StockDTO is the stock-on-hand of one medicine.
type StockDTO struct {
	MedicineID int64 `json:"medicineId"`
	StockQty   int   `json:"stockQuantity"`
}

// FromModel maps a medicine record to its row projection.
func FromModel(m models.Medicine) MedicineRow {
	return MedicineRow{
		MedicineID:   m.ID,
		Name:         m.Name,
		GenericName:  m.GenericName,
		Category:     m.Category,
		Manufacturer: m.Manufacturer,
		UnitPrice:    types.MoneyNumber(m.UnitPrice),
		StockQty:     m.StockQty,
		ReorderLevel: m.ReorderLevel,
		ExpiryDate:   m.ExpiryDate,
		BatchNumber:  m.BatchNumber,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}
