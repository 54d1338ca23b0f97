package purchases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/internal/inventory"
	"github.com/medstore/medstore-backend/pkg/db/models"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

// Service records stock received from suppliers.
type Service interface {
	Create(ctx context.Context, input CreatePurchaseInput) (*CreatePurchaseResult, error)
	List(ctx context.Context) ([]PurchaseSummary, error)
	Delete(ctx context.Context, purchaseID int64) error
}

// CreatePurchaseInput is a supplier delivery with its lines.
type CreatePurchaseInput struct {
	SupplierName  string
	InvoiceNumber *string
	Items         []LineInput
}

// LineInput is one delivered medicine.
type LineInput struct {
	MedicineID int64
	Quantity   int
	UnitCost   decimal.Decimal
}

// CreatePurchaseResult is returned once a purchase has been committed.
type CreatePurchaseResult struct {
	PurchaseID  int64
	TotalAmount decimal.Decimal
}

// CreatePurchaseResponse is the wire form of CreatePurchaseResult.
type CreatePurchaseResponse struct {
	PurchaseID  int64       `json:"purchaseId"`
	TotalAmount json.Number `json:"totalAmount"`
}

// NewCreatePurchaseResponse renders the total as a two-decimal JSON number.
func NewCreatePurchaseResponse(res *CreatePurchaseResult) CreatePurchaseResponse {
	return CreatePurchaseResponse{PurchaseID: res.PurchaseID, TotalAmount: types.MoneyNumber(res.TotalAmount)}
}

// PurchaseSummary is a purchase header as listed to clients.
type PurchaseSummary struct {
	ID            string      `json:"id"`
	SupplierName  string      `json:"supplierName"`
	InvoiceNumber *string     `json:"invoiceNumber"`
	TotalAmount   json.Number `json:"totalAmount"`
	PurchaseDate  time.Time   `json:"purchaseDate"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockEngine interface {
	Load(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Medicine, error)
	Decrement(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error)
	Restore(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error)
}

// ServiceParams wires the purchases service dependencies.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Stock    stockEngine
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo  Repository
	tx    txRunner
	stock stockEngine
	logg  *logger.Logger
	now   func() time.Time
}

// NewService constructs the purchases service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Stock == nil {
		params.Stock = inventory.Engine{}
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		repo:  params.Repo,
		tx:    params.TxRunner,
		stock: params.Stock,
		logg:  params.Logger,
		now:   params.Clock,
	}, nil
}

// Create inserts the purchase and its items and adds every delivered unit
// to stock in one transaction.
func (s *service) Create(ctx context.Context, input CreatePurchaseInput) (*CreatePurchaseResult, error) {
	supplier, err := validateCreate(input)
	if err != nil {
		return nil, err
	}

	var result CreatePurchaseResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		ids := make([]int64, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.MedicineID)
		}
		medicines, err := s.stock.Load(ctx, tx, ids)
		if err != nil {
			return err
		}
		unknown := map[string]string{}
		for i, item := range input.Items {
			if _, ok := medicines[item.MedicineID]; !ok {
				unknown[fmt.Sprintf("items[%d].medicineId", i)] = "unknown medicine"
			}
		}
		if len(unknown) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown medicine").WithDetails(unknown)
		}

		lines := make([]models.PurchaseItem, 0, len(input.Items))
		requests := make([]inventory.StockRequest, 0, len(input.Items))
		total := decimal.Zero
		for _, item := range input.Items {
			lineTotal := item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(lineTotal)
			lines = append(lines, models.PurchaseItem{
				MedicineID: item.MedicineID,
				Quantity:   item.Quantity,
				UnitCost:   item.UnitCost,
				LineTotal:  lineTotal,
			})
			requests = append(requests, inventory.StockRequest{MedicineID: item.MedicineID, Qty: item.Quantity})
		}

		purchase := &models.Purchase{
			SupplierName:  supplier,
			InvoiceNumber: blankToNil(input.InvoiceNumber),
			TotalAmount:   total,
			PurchaseDate:  s.now().UTC(),
		}
		if err := txRepo.CreatePurchase(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert purchase")
		}
		for i := range lines {
			lines[i].PurchaseID = purchase.ID
			if err := txRepo.CreatePurchaseItem(ctx, &lines[i]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert purchase item")
			}
		}

		results, err := s.stock.Restore(ctx, tx, requests)
		if err != nil {
			return err
		}
		if failed := inventory.Failed(results); len(failed) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown medicine")
		}

		result = CreatePurchaseResult{PurchaseID: purchase.ID, TotalAmount: total}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Persistence(err, "create purchase")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"purchase_id":  result.PurchaseID,
		"total_amount": result.TotalAmount.StringFixed(types.MoneyScale),
		"supplier":     supplier,
	})
	s.logg.Info(logCtx, "purchase.created")
	return &result, nil
}

// List returns purchase headers newest first.
func (s *service) List(ctx context.Context) ([]PurchaseSummary, error) {
	purchases, err := s.repo.ListPurchases(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: list purchases")
	}
	out := make([]PurchaseSummary, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, PurchaseSummary{
			ID:            strconv.FormatInt(p.ID, 10),
			SupplierName:  p.SupplierName,
			InvoiceNumber: p.InvoiceNumber,
			TotalAmount:   types.MoneyNumber(p.TotalAmount),
			PurchaseDate:  p.PurchaseDate.UTC(),
		})
	}
	return out, nil
}

// Delete removes a purchase and takes its units back out of stock. Units that
// have since been sold make the delete fail with insufficient stock.
func (s *service) Delete(ctx context.Context, purchaseID int64) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		items, err := txRepo.FindPurchaseItems(ctx, purchaseID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load purchase items")
		}
		if len(items) > 0 {
			requests := make([]inventory.StockRequest, 0, len(items))
			for _, item := range items {
				requests = append(requests, inventory.StockRequest{MedicineID: item.MedicineID, Qty: item.Quantity})
			}
			results, err := s.stock.Decrement(ctx, tx, requests)
			if err != nil {
				return err
			}
			if failed := inventory.Failed(results); len(failed) > 0 {
				details := make([]map[string]any, 0, len(failed))
				for _, res := range failed {
					details = append(details, map[string]any{
						"medicineId": res.MedicineID,
						"requested":  res.Qty,
						"available":  res.Available,
					})
				}
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "purchased stock has already been sold").WithDetails(details)
			}
		}

		if _, err := txRepo.DeletePurchaseItems(ctx, purchaseID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete purchase items")
		}
		affected, err := txRepo.DeletePurchase(ctx, purchaseID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete purchase")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("purchase %d not found", purchaseID))
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Persistence(err, "delete purchase")
	}
	s.logg.Info(s.logg.WithField(ctx, "purchase_id", purchaseID), "purchase.deleted")
	return nil
}

func validateCreate(input CreatePurchaseInput) (string, error) {
	supplier := strings.TrimSpace(input.SupplierName)
	details := map[string]string{}
	if supplier == "" {
		details["supplierName"] = "is required"
	}
	if len(input.Items) == 0 {
		details["items"] = "must contain at least one item"
	}
	for i, item := range input.Items {
		if item.MedicineID <= 0 {
			details[fmt.Sprintf("items[%d].medicineId", i)] = "is required"
		}
		if item.Quantity <= 0 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than zero"
		}
		if item.UnitCost.LessThan(decimal.Zero) {
			details[fmt.Sprintf("items[%d].unitCost", i)] = "must not be negative"
		} else if !types.HasMoneyScale(item.UnitCost) {
			details[fmt.Sprintf("items[%d].unitCost", i)] = "must have at most two decimal places"
		}
	}
	if len(details) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase").WithDetails(details)
	}
	return supplier, nil
}

func blankToNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
