package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/medstore/medstore-backend/internal/inventory"
	"github.com/medstore/medstore-backend/pkg/db/models"
	"github.com/medstore/medstore-backend/pkg/enums"
	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/logger"
	"github.com/medstore/medstore-backend/pkg/types"
)

// Service records point-of-sale transactions.
type Service interface {
	Create(ctx context.Context, input CreateSaleInput) (*CreateSaleResult, error)
	List(ctx context.Context) ([]SaleSummary, error)
	Get(ctx context.Context, saleID int64) (*SaleSummary, error)
	Update(ctx context.Context, saleID int64, input UpdateSaleInput) (*SaleRow, error)
	Delete(ctx context.Context, saleID int64) error
}

// CreateSaleInput is a sale with all of its lines.
type CreateSaleInput struct {
	CustomerID         *int64
	PrescriptionNumber *string
	PaymentMethod      string
	Items              []LineInput
}

// LineInput is one requested line. UnitPrice is what the till displayed.
type LineInput struct {
	MedicineID int64
	Quantity   int
	UnitPrice  decimal.Decimal
}

// UpdateSaleInput replaces the mutable header fields of a sale.
type UpdateSaleInput struct {
	CustomerID         *int64
	PrescriptionNumber *string
	PaymentMethod      string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockEngine interface {
	Load(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Medicine, error)
	Decrement(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error)
	Restore(ctx context.Context, tx *gorm.DB, requests []inventory.StockRequest) ([]inventory.StockResult, error)
}

type recorder interface {
	SaleCreated(paymentMethod string, total decimal.Decimal, units int)
	SaleRejected(reason string)
	SaleDeleted()
}

// ServiceParams wires the sales service dependencies.
type ServiceParams struct {
	Repo        Repository
	TxRunner    txRunner
	Stock       stockEngine
	PricePolicy enums.PricePolicy
	Metrics     recorder
	Logger      *logger.Logger
	Clock       func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	stock   stockEngine
	policy  enums.PricePolicy
	metrics recorder
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the sales service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Stock == nil {
		params.Stock = inventory.Engine{}
	}
	if params.PricePolicy == "" {
		params.PricePolicy = enums.PricePolicyReject
	}
	if !params.PricePolicy.IsValid() {
		return nil, fmt.Errorf("invalid price policy %q", params.PricePolicy)
	}
	if params.Metrics == nil {
		params.Metrics = noopRecorder{}
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Clock == nil {
		params.Clock = time.Now
	}
	return &service{
		repo:    params.Repo,
		tx:      params.TxRunner,
		stock:   params.Stock,
		policy:  params.PricePolicy,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     params.Clock,
	}, nil
}

// Create inserts the sale header and every line, decrementing stock for each
// line, as one unit. Nothing is persisted when any step fails.
func (s *service) Create(ctx context.Context, input CreateSaleInput) (*CreateSaleResult, error) {
	method, err := validateCreate(input)
	if err != nil {
		s.metrics.SaleRejected(string(pkgerrors.CodeValidation))
		return nil, err
	}

	var result CreateSaleResult
	var units int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := ensureCustomer(ctx, txRepo, input.CustomerID); err != nil {
			return err
		}

		ids := make([]int64, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.MedicineID)
		}
		medicines, err := s.stock.Load(ctx, tx, ids)
		if err != nil {
			return err
		}

		lines, err := s.priceLines(input.Items, medicines)
		if err != nil {
			return err
		}

		requests := make([]inventory.StockRequest, 0, len(lines))
		for _, line := range lines {
			requests = append(requests, inventory.StockRequest{MedicineID: line.MedicineID, Qty: line.Quantity})
		}
		stockResults, err := s.stock.Decrement(ctx, tx, requests)
		if err != nil {
			return err
		}
		if failed := inventory.Failed(stockResults); len(failed) > 0 {
			return insufficientStockError(failed)
		}

		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(line.LineTotal)
			units += line.Quantity
		}

		sale := &models.Sale{
			CustomerID:         input.CustomerID,
			PrescriptionNumber: normalizeOptional(input.PrescriptionNumber),
			PaymentMethod:      method.String(),
			TotalAmount:        total,
			SaleDate:           s.now().UTC(),
		}
		if err := txRepo.CreateSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert sale")
		}

		for i := range lines {
			lines[i].SaleID = sale.ID
			if err := txRepo.CreateSaleItem(ctx, &lines[i]); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: insert sale item")
			}
		}

		result = CreateSaleResult{SaleID: sale.ID, TotalAmount: total}
		return nil
	})
	if err != nil {
		err = pkgerrors.Persistence(err, "create sale")
		s.metrics.SaleRejected(string(pkgerrors.As(err).Code()))
		return nil, err
	}

	s.metrics.SaleCreated(method.MetricLabel(), result.TotalAmount, units)
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"sale_id":      result.SaleID,
		"total_amount": result.TotalAmount.StringFixed(types.MoneyScale),
		"items":        len(input.Items),
	})
	s.logg.Info(logCtx, "sale.created")
	return &result, nil
}

// List returns sale headers newest first. Items and customer names are not
// resolved in this projection.
func (s *service) List(ctx context.Context) ([]SaleSummary, error) {
	rows, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: list sales")
	}
	out := make([]SaleSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, newSaleSummary(row))
	}
	return out, nil
}

// Get returns one sale with its lines and customer name.
func (s *service) Get(ctx context.Context, saleID int64) (*SaleSummary, error) {
	sale, err := s.repo.FindSale(ctx, saleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, saleNotFound(saleID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load sale")
	}

	summary := newSaleSummary(*sale)
	if sale.CustomerID != nil {
		name, _, err := s.repo.FindCustomerName(ctx, *sale.CustomerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load customer")
		}
		summary.CustomerName = name
	}

	lines, err := s.repo.FindSaleLines(ctx, saleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load sale items")
	}
	for _, line := range lines {
		summary.Items = append(summary.Items, newSaleLineDTO(line))
	}
	return &summary, nil
}

// Update replaces the header fields of a sale. Items, total and sale date are
// never touched.
func (s *service) Update(ctx context.Context, saleID int64, input UpdateSaleInput) (*SaleRow, error) {
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method").
			WithDetails(map[string]string{"paymentMethod": "is required"})
	}

	var row SaleRow
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if err := ensureCustomer(ctx, txRepo, input.CustomerID); err != nil {
			return err
		}

		affected, err := txRepo.UpdateSaleHeader(ctx, saleID, HeaderUpdate{
			CustomerID:         input.CustomerID,
			PrescriptionNumber: normalizeOptional(input.PrescriptionNumber),
			PaymentMethod:      method.String(),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: update sale")
		}
		if affected == 0 {
			return saleNotFound(saleID)
		}

		sale, err := txRepo.FindSale(ctx, saleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: reload sale")
		}
		row = newSaleRow(*sale)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Persistence(err, "update sale")
	}
	return &row, nil
}

// Delete removes the sale and its items and returns their units to stock.
// Existence is judged by the header delete's affected row count.
func (s *service) Delete(ctx context.Context, saleID int64) error {
	var restored int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		items, err := txRepo.FindSaleItems(ctx, saleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load sale items")
		}

		if len(items) > 0 {
			requests := make([]inventory.StockRequest, 0, len(items))
			for _, item := range items {
				requests = append(requests, inventory.StockRequest{MedicineID: item.MedicineID, Qty: item.Quantity})
			}
			results, err := s.stock.Restore(ctx, tx, requests)
			if err != nil {
				return err
			}
			for _, res := range results {
				if res.Applied {
					restored += res.Qty
				}
			}
		}

		if _, err := txRepo.DeleteSaleItems(ctx, saleID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete sale items")
		}
		affected, err := txRepo.DeleteSale(ctx, saleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: delete sale")
		}
		if affected == 0 {
			return saleNotFound(saleID)
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Persistence(err, "delete sale")
	}

	s.metrics.SaleDeleted()
	logCtx := s.logg.WithFields(ctx, map[string]any{"sale_id": saleID, "units_restored": restored})
	s.logg.Info(logCtx, "sale.deleted")
	return nil
}

// priceLines resolves the charged unit price of every line against the
// catalogue according to the configured policy.
func (s *service) priceLines(items []LineInput, medicines map[int64]models.Medicine) ([]models.SaleItem, error) {
	unknown := map[string]string{}
	mismatched := map[string]string{}
	lines := make([]models.SaleItem, 0, len(items))

	for i, item := range items {
		med, ok := medicines[item.MedicineID]
		if !ok {
			unknown[fmt.Sprintf("items[%d].medicineId", i)] = "unknown medicine"
			continue
		}

		price := item.UnitPrice
		if !price.Equal(med.UnitPrice) {
			switch s.policy {
			case enums.PricePolicyAuthoritative:
				price = med.UnitPrice
			default:
				mismatched[fmt.Sprintf("items[%d].unitPrice", i)] = "expected " + med.UnitPrice.StringFixed(types.MoneyScale)
				continue
			}
		}

		lines = append(lines, models.SaleItem{
			MedicineID: item.MedicineID,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			LineTotal:  LineTotal(item.Quantity, price),
		})
	}

	if len(unknown) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown medicine").WithDetails(unknown)
	}
	if len(mismatched) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "price mismatch").WithDetails(mismatched)
	}
	return lines, nil
}

// LineTotal is quantity × unit price, exact in decimal arithmetic.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func validateCreate(input CreateSaleInput) (enums.PaymentMethod, error) {
	if len(input.Items) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Sale must have at least one item").
			WithDetails(map[string]string{"items": "must contain at least one item"})
	}

	details := map[string]string{}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		details["paymentMethod"] = "is required"
	}
	for i, item := range input.Items {
		if item.MedicineID <= 0 {
			details[fmt.Sprintf("items[%d].medicineId", i)] = "is required"
		}
		if item.Quantity <= 0 {
			details[fmt.Sprintf("items[%d].quantity", i)] = "must be greater than zero"
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			details[fmt.Sprintf("items[%d].unitPrice", i)] = "must not be negative"
		} else if !types.HasMoneyScale(item.UnitPrice) {
			details[fmt.Sprintf("items[%d].unitPrice", i)] = "must have at most two decimal places"
		}
	}
	if len(details) > 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid sale").WithDetails(details)
	}
	return method, nil
}

func insufficientStockError(failed []inventory.StockResult) error {
	details := make([]map[string]any, 0, len(failed))
	for _, res := range failed {
		details = append(details, map[string]any{
			"medicineId": res.MedicineID,
			"requested":  res.Qty,
			"available":  res.Available,
			"reason":     res.Reason,
		})
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(details)
}

func ensureCustomer(ctx context.Context, repo Repository, customerID *int64) error {
	if customerID == nil {
		return nil
	}
	_, found, err := repo.FindCustomerName(ctx, *customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "db: load customer")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer not found").
			WithDetails(map[string]string{"customerId": "unknown customer"})
	}
	return nil
}

func saleNotFound(saleID int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sale %d not found", saleID))
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type noopRecorder struct{}

func (noopRecorder) SaleCreated(string, decimal.Decimal, int) {}
func (noopRecorder) SaleRejected(string)                      {}
func (noopRecorder) SaleDeleted()                             {}
