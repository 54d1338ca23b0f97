package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/internal/medicines"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/types"
)

const (
	DefaultExpiryWindowDays = 30
	MaxExpiryWindowDays     = 365
	DefaultRevenueDays      = 30
)

// Service derives read-only reports from inventory and sales.
type Service interface {
	LowStock(ctx context.Context) ([]medicines.MedicineRow, error)
	Expiring(ctx context.Context, withinDays int) ([]medicines.MedicineRow, error)
	Expired(ctx context.Context) ([]medicines.MedicineRow, error)
	Revenue(ctx context.Context, query RevenueQuery) (*RevenueReport, error)
	InventoryValue(ctx context.Context) (*InventoryValueReport, error)
}

// RevenueQuery bounds a revenue report to [From, To). Nil bounds default to
// the trailing DefaultRevenueDays.
type RevenueQuery struct {
	From *time.Time
	To   *time.Time
}

// RevenueReport summarises sales in a window.
type RevenueReport struct {
	From       time.Time         `json:"from"`
	To         time.Time         `json:"to"`
	SaleCount  int64             `json:"saleCount"`
	Revenue    json.Number       `json:"revenue"`
	ByMedicine []MedicineRevenue `json:"byMedicine"`
}

// MedicineRevenue is one medicine's share of a revenue report.
type MedicineRevenue struct {
	MedicineID   int64       `json:"medicineId"`
	MedicineName string      `json:"medicineName"`
	Quantity     int64       `json:"quantity"`
	Revenue      json.Number `json:"revenue"`
}

// InventoryValueReport is the value of stock on hand at current prices.
type InventoryValueReport struct {
	MedicineCount int64       `json:"medicineCount"`
	TotalUnits    int64       `json:"totalUnits"`
	TotalValue    json.Number `json:"totalValue"`
}

type service struct {
	repo *repository
	now  func() time.Time
}

// NewService builds the reports service over db. clock may be nil.
func NewService(db *gorm.DB, clock func() time.Time) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: newRepository(db), now: clock}, nil
}

func (s *service) LowStock(ctx context.Context) ([]medicines.MedicineRow, error) {
	rows, err := s.repo.lowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: low stock report")
	}
	return toRows(rows), nil
}

// Expiring lists medicines whose expiry date falls within the next
// withinDays days, today included.
func (s *service) Expiring(ctx context.Context, withinDays int) ([]medicines.MedicineRow, error) {
	if withinDays == 0 {
		withinDays = DefaultExpiryWindowDays
	}
	if withinDays < 0 || withinDays > MaxExpiryWindowDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry window out of range").
			WithDetails(map[string]any{"field": "days", "min": 1, "max": MaxExpiryWindowDays})
	}
	today := s.today()
	rows, err := s.repo.expiringBetween(ctx, today, today.AddDays(withinDays))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: expiring report")
	}
	return toRows(rows), nil
}

func (s *service) Expired(ctx context.Context) ([]medicines.MedicineRow, error) {
	rows, err := s.repo.expiredBefore(ctx, s.today())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: expired report")
	}
	return toRows(rows), nil
}

func (s *service) Revenue(ctx context.Context, query RevenueQuery) (*RevenueReport, error) {
	to := s.now().UTC()
	if query.To != nil {
		to = query.To.UTC()
	}
	from := to.AddDate(0, 0, -DefaultRevenueDays)
	if query.From != nil {
		from = query.From.UTC()
	}
	if !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to").
			WithDetails(map[string]string{"from": "must be before to"})
	}

	totals, err := s.repo.revenueTotals(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: revenue totals")
	}
	breakdown, err := s.repo.revenueByMedicine(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: revenue breakdown")
	}

	report := &RevenueReport{
		From:       from,
		To:         to,
		SaleCount:  totals.SaleCount,
		Revenue:    types.MoneyNumber(totals.Revenue),
		ByMedicine: make([]MedicineRevenue, 0, len(breakdown)),
	}
	for _, row := range breakdown {
		name := ""
		if row.MedicineName != nil {
			name = *row.MedicineName
		}
		report.ByMedicine = append(report.ByMedicine, MedicineRevenue{
			MedicineID:   row.MedicineID,
			MedicineName: name,
			Quantity:     row.Quantity,
			Revenue:      types.MoneyNumber(row.Revenue),
		})
	}
	return report, nil
}

func (s *service) InventoryValue(ctx context.Context) (*InventoryValueReport, error) {
	totals, err := s.repo.inventoryTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: inventory value")
	}
	return &InventoryValueReport{
		MedicineCount: totals.MedicineCount,
		TotalUnits:    totals.TotalUnits,
		TotalValue:    types.MoneyNumber(totals.TotalValue),
	}, nil
}

func (s *service) today() types.Date {
	return types.NewDate(s.now())
}

func toRows(in []models.Medicine) []medicines.MedicineRow {
	out := make([]medicines.MedicineRow, 0, len(in))
	for _, m := range in {
		out = append(out, medicines.FromModel(m))
	}
	return out
}
