package medicines

import (
	"context"

	"github.com/medstore/medstore-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists catalogue medicines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Medicine, error)
	FindByID(ctx context.Context, id int64) (*models.Medicine, error)
	Create(ctx context.Context, medicine *models.Medicine) error
	Update(ctx context.Context, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	StockQty(ctx context.Context, id int64) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed medicines repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Medicine, error) {
	var medicines []models.Medicine
	err := r.db.WithContext(ctx).Order("medicine_id ASC").Find(&medicines).Error
	return medicines, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Medicine, error) {
	var medicine models.Medicine
	if err := r.db.WithContext(ctx).Where("medicine_id = ?", id).Take(&medicine).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *repository) Create(ctx context.Context, medicine *models.Medicine) error {
	return r.db.WithContext(ctx).Create(medicine).Error
}

func (r *repository) Update(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Medicine{}).
		Where("medicine_id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("medicine_id = ?", id).Delete(&models.Medicine{})
	return res.RowsAffected, res.Error
}

func (r *repository) StockQty(ctx context.Context, id int64) (int, error) {
	var medicine models.Medicine
	err := r.db.WithContext(ctx).
		Select("medicine_id", "stock_qty").
		Where("medicine_id = ?", id).
		Take(&medicine).Error
	return medicine.StockQty, err
}
