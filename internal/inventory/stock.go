package inventory

import (
	"context"
	"errors"
	"sort"

	pkgerrors "github.com/medstore/medstore-backend/pkg/errors"
	"github.com/medstore/medstore-backend/pkg/db/models"
	"gorm.io/gorm"
)

const (
	ReasonInsufficientStock = "insufficient stock"
	ReasonMedicineNotFound  = "medicine not found"
)

// StockRequest adjusts one medicine's stock by Qty units.
type StockRequest struct {
	MedicineID int64
	Qty        int
}

// StockResult reports whether a request was applied and, if not, why.
type StockResult struct {
	MedicineID int64
	Qty        int
	Applied    bool
	Available  int
	Reason     string
}

// Failed returns the results that were not applied.
func Failed(results []StockResult) []StockResult {
	var failed []StockResult
	for _, res := range results {
		if !res.Applied {
			failed = append(failed, res)
		}
	}
	return failed
}

// DecrementStock removes units from each medicine within tx. A request only
// applies when enough stock remains, so stock_qty never goes negative even
// when concurrent transactions target the same row.
func DecrementStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for stock decrement")
	}
	if err := validateRequests(requests); err != nil {
		return nil, err
	}

	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		res := tx.WithContext(ctx).Exec(`
			UPDATE medicines
			SET stock_qty = stock_qty - ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE medicine_id = ? AND stock_qty >= ?
		`, req.Qty, req.MedicineID, req.Qty)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, res.Error, "decrement stock")
		}

		result := StockResult{MedicineID: req.MedicineID, Qty: req.Qty, Applied: res.RowsAffected == 1}
		if !result.Applied {
			available, found, err := currentStock(ctx, tx, req.MedicineID)
			if err != nil {
				return nil, err
			}
			result.Available = available
			result.Reason = ReasonInsufficientStock
			if !found {
				result.Reason = ReasonMedicineNotFound
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// RestoreStock returns units to each medicine within tx. Medicines that no
// longer exist are reported as not applied.
func RestoreStock(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for stock restore")
	}
	if err := validateRequests(requests); err != nil {
		return nil, err
	}

	results := make([]StockResult, 0, len(requests))
	for _, req := range requests {
		res := tx.WithContext(ctx).Exec(`
			UPDATE medicines
			SET stock_qty = stock_qty + ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE medicine_id = ?
		`, req.Qty, req.MedicineID)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, res.Error, "restore stock")
		}
		result := StockResult{MedicineID: req.MedicineID, Qty: req.Qty, Applied: res.RowsAffected == 1}
		if !result.Applied {
			result.Reason = ReasonMedicineNotFound
		}
		results = append(results, result)
	}
	return results, nil
}

// LoadMedicines reads the referenced medicines within tx, keyed by id.
// Missing ids are simply absent from the map.
func LoadMedicines(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Medicine, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required for medicine lookup")
	}
	unique := uniqueIDs(ids)
	out := make(map[int64]models.Medicine, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	var rows []models.Medicine
	if err := tx.WithContext(ctx).Where("medicine_id IN ?", unique).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load medicines")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func currentStock(ctx context.Context, tx *gorm.DB, medicineID int64) (int, bool, error) {
	var med models.Medicine
	err := tx.WithContext(ctx).Select("medicine_id", "stock_qty").Where("medicine_id = ?", medicineID).Take(&med).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "read stock")
	}
	return med.StockQty, true, nil
}

func validateRequests(requests []StockRequest) error {
	for _, req := range requests {
		if req.MedicineID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "medicine id must be positive")
		}
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Engine exposes the package functions behind an interface-friendly value.
type Engine struct{}

func (Engine) Load(ctx context.Context, tx *gorm.DB, ids []int64) (map[int64]models.Medicine, error) {
	return LoadMedicines(ctx, tx, ids)
}

func (Engine) Decrement(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	return DecrementStock(ctx, tx, requests)
}

func (Engine) Restore(ctx context.Context, tx *gorm.DB, requests []StockRequest) ([]StockResult, error) {
	return RestoreStock(ctx, tx, requests)
}
