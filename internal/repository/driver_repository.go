package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) WithTx(tx *gorm.DB) *DriverRepository {
	return &DriverRepository{db: tx}
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Driver{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ListAvailable возвращает водителей со статусом ACTIVE без текущего
// назначения.
func (r *DriverRepository) ListAvailable(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).
		Where("status = ? AND current_assignment_id IS NULL", model.DriverStatusActive).
		Order("full_name ASC").
		Find(&drivers).Error
	return drivers, err
}
