package purchases

import (
	"context"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists supplier purchases and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePurchase(ctx context.Context, purchase *models.Purchase) error
	CreatePurchaseItem(ctx context.Context, item *models.PurchaseItem) error
	ListPurchases(ctx context.Context) ([]models.Purchase, error)
	FindPurchaseItems(ctx context.Context, purchaseID int64) ([]models.PurchaseItem, error)
	DeletePurchaseItems(ctx context.Context, purchaseID int64) (int64, error)
	DeletePurchase(ctx context.Context, purchaseID int64) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed purchases repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(purchase).Error
}

func (r *repository) CreatePurchaseItem(ctx context.Context, item *models.PurchaseItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *repository) ListPurchases(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Order("purchase_date DESC").
		Order("purchase_id DESC").
		Find(&purchases).Error
	return purchases, err
}

func (r *repository) FindPurchaseItems(ctx context.Context, purchaseID int64) ([]models.PurchaseItem, error) {
	var items []models.PurchaseItem
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("purchase_item_id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) DeletePurchaseItems(ctx context.Context, purchaseID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).Delete(&models.PurchaseItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeletePurchase(ctx context.Context, purchaseID int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).Delete(&models.Purchase{})
	return res.RowsAffected, res.Error
}
