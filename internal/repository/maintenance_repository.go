package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) WithTx(tx *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: tx}
}

func (r *MaintenanceRepository) Create(ctx context.Context, job *model.MaintenanceJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *MaintenanceRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.MaintenanceJob, error) {
	var job model.MaintenanceJob
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *MaintenanceRepository) Update(ctx context.Context, job *model.MaintenanceJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

// FindOpenByTruckForUpdate возвращает незакрытую работу по грузовику с
// блокировкой строки, nil если её нет.
func (r *MaintenanceRepository) FindOpenByTruckForUpdate(ctx context.Context, truckID uuid.UUID) (*model.MaintenanceJob, error) {
	var job model.MaintenanceJob
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("truck_id = ? AND status = ?", truckID, model.MaintenanceStatusInProgress).
		First(&job).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

func (r *MaintenanceRepository) ListByTruck(ctx context.Context, truckID uuid.UUID) ([]model.MaintenanceJob, error) {
	var jobs []model.MaintenanceJob
	err := r.db.WithContext(ctx).
		Where("truck_id = ?", truckID).
		Order("start_date DESC").
		Find(&jobs).Error
	return jobs, err
}
