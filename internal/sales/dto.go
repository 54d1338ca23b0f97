package sales

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/medstore/medstore-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// SaleSummary is the camelCase projection served by the sales listing.
type SaleSummary struct {
	ID                 string        `json:"id"`
	CustomerID         *int64        `json:"customerId"`
	CustomerName       string        `json:"customerName"`
	SaleDate           time.Time     `json:"saleDate"`
	TotalAmount        json.Number   `json:"totalAmount"`
	PaymentMethod      string        `json:"paymentMethod"`
	PrescriptionNumber *string       `json:"prescriptionNumber"`
	Items              []SaleLineDTO `json:"items"`
}

// SaleLineDTO is one item of a sale detail.
type SaleLineDTO struct {
	MedicineID   string      `json:"medicineId"`
	MedicineName string      `json:"medicineName"`
	Quantity     int         `json:"quantity"`
	UnitPrice    json.Number `json:"unitPrice"`
	Subtotal     json.Number `json:"subtotal"`
}

// SaleRow mirrors the sales table columns, returned after a header update.
type SaleRow struct {
	SaleID             int64       `json:"sale_id"`
	CustomerID         *int64      `json:"customer_id"`
	PrescriptionNumber *string     `json:"prescription_number"`
	PaymentMethod      string      `json:"payment_method"`
	TotalAmount        json.Number `json:"total_amount"`
	SaleDate           time.Time   `json:"sale_date"`
}

// CreateSaleResult is returned once a sale has been committed.
type CreateSaleResult struct {
	SaleID      int64
	TotalAmount decimal.Decimal
}

// CreateSaleResponse is the wire form of CreateSaleResult.
type CreateSaleResponse struct {
	SaleID      int64       `json:"saleId"`
	TotalAmount json.Number `json:"totalAmount"`
}

// NewCreateSaleResponse renders the total as a two-decimal JSON number.
func NewCreateSaleResponse(res *CreateSaleResult) CreateSaleResponse {
	return CreateSaleResponse{SaleID: res.SaleID, TotalAmount: types.MoneyNumber(res.TotalAmount)}
}

func newSaleSummary(sale models.Sale) SaleSummary {
	return SaleSummary{
		ID:                 strconv.FormatInt(sale.ID, 10),
		CustomerID:         sale.CustomerID,
		CustomerName:       "",
		SaleDate:           sale.SaleDate.UTC(),
		TotalAmount:        types.MoneyNumber(sale.TotalAmount),
		PaymentMethod:      sale.PaymentMethod,
		PrescriptionNumber: sale.PrescriptionNumber,
		Items:              []SaleLineDTO{},
	}
}

func newSaleLineDTO(line SaleLine) SaleLineDTO {
	name := ""
	if line.MedicineName != nil {
		name = *line.MedicineName
	}
	return SaleLineDTO{
		MedicineID:   strconv.FormatInt(line.MedicineID, 10),
		MedicineName: name,
		Quantity:     line.Quantity,
		UnitPrice:    types.MoneyNumber(line.UnitPrice),
		Subtotal:     types.MoneyNumber(line.LineTotal),
	}
}

func newSaleRow(sale models.Sale) SaleRow {
	return SaleRow{
		SaleID:             sale.ID,
		CustomerID:         sale.CustomerID,
		PrescriptionNumber: sale.PrescriptionNumber,
		PaymentMethod:      sale.PaymentMethod,
		TotalAmount:        types.MoneyNumber(sale.TotalAmount),
		SaleDate:           sale.SaleDate.UTC(),
	}
}
