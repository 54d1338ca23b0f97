package medicines

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/pkg/db"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

// Service exposes the medicine catalogue and its stock levels.
type Service interface {
	List(ctx context.Context) ([]MedicineRow, error)
	Get(ctx context.Context, id int64) (*MedicineRow, error)
	GetStock(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, input MedicineInput) (*MedicineRow, error)
	Update(ctx context.Context, id int64, input MedicineInput) (*MedicineRow, error)
	Delete(ctx context.Context, id int64) error
}

// MedicineInput carries every editable medicine field. Update replaces all of them.
type MedicineInput struct {
	Name         string
	GenericName  string
	Category     string
	Manufacturer string
	UnitPrice    decimal.Decimal
	StockQty     int
	ReorderLevel int
	ExpiryDate   *types.Date
	BatchNumber  string
	Description  string
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the medicines service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("medicines repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]MedicineRow, error) {
	medicines, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: list medicines")
	}
	out := make([]MedicineRow, 0, len(medicines))
	for _, m := range medicines {
		out = append(out, FromModel(m))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*MedicineRow, error) {
	medicine, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, medicineNotFound(id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load medicine")
	}
	row := FromModel(*medicine)
	return &row, nil
}

// GetStock returns the units currently on hand.
func (s *service) GetStock(ctx context.Context, id int64) (int, error) {
	qty, err := s.repo.StockQty(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, medicineNotFound(id)
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load stock")
	}
	return qty, nil
}

func (s *service) Create(ctx context.Context, input MedicineInput) (*MedicineRow, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	medicine := input.toModel()
	if err := s.repo.Create(ctx, &medicine); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert medicine")
	}

	s.logg.Info(s.logg.WithField(ctx, "medicine_id", medicine.ID), "medicine.created")
	return s.Get(ctx, medicine.ID)
}

func (s *service) Update(ctx context.Context, id int64, input MedicineInput) (*MedicineRow, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.Update(ctx, id, map[string]any{
		"name":          input.Name,
		"generic_name":  input.GenericName,
		"category":      input.Category,
		"manufacturer":  input.Manufacturer,
		"unit_price":    input.UnitPrice,
		"stock_qty":     input.StockQty,
		"reorder_level": input.ReorderLevel,
		"expiry_date":   input.ExpiryDate,
		"batch_number":  input.BatchNumber,
		"description":   input.Description,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: update medicine")
	}
	if affected == 0 {
		return nil, medicineNotFound(id)
	}
	return s.Get(ctx, id)
}

// Delete removes a medicine. Medicines referenced by recorded sales or
// purchases cannot be removed.
func (s *service) Delete(ctx context.Context, id int64) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "medicine is referenced by recorded sales or purchases")
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete medicine")
	}
	if affected == 0 {
		return medicineNotFound(id)
	}
	s.logg.Info(s.logg.WithField(ctx, "medicine_id", id), "medicine.deleted")
	return nil
}

func normalizeInput(input MedicineInput) (MedicineInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.GenericName = strings.TrimSpace(input.GenericName)
	input.Category = strings.TrimSpace(input.Category)
	input.Manufacturer = strings.TrimSpace(input.Manufacturer)
	input.BatchNumber = strings.TrimSpace(input.BatchNumber)

	details := map[string]string{}
	if input.Name == "" {
		details["name"] = "is required"
	}
	if input.UnitPrice.LessThan(decimal.Zero) {
		details["unitPrice"] = "must not be negative"
	} else if !types.HasMoneyScale(input.UnitPrice) {
		details["unitPrice"] = "must have at most two decimal places"
	}
	if input.StockQty < 0 {
		details["stockQuantity"] = "must not be negative"
	}
	if input.ReorderLevel < 0 {
		details["reorderLevel"] = "must not be negative"
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid medicine").WithDetails(details)
	}
	return input, nil
}

func (in MedicineInput) toModel() models.Medicine {
	return models.Medicine{
		Name:         in.Name,
		GenericName:  in.GenericName,
		Category:     in.Category,
		Manufacturer: in.Manufacturer,
		UnitPrice:    in.UnitPrice,
		StockQty:     in.StockQty,
		ReorderLevel: in.ReorderLevel,
		ExpiryDate:   in.ExpiryDate,
		BatchNumber:  in.BatchNumber,
		Description:  in.Description,
	}
}

func medicineNotFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("medicine %d not found", id))
}
