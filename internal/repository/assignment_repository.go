package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *AssignmentRepository) ListActiveByTruck(ctx context.Context, truckID uuid.UUID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("truck_id = ? AND status = ?", truckID, model.AssignmentStatusActive).
		Order("assigned_at ASC").
		Find(&assignments).Error
	return assignments, err
}

type AssignmentListFilter struct {
	TruckID  *uuid.UUID
	DriverID *uuid.UUID
	Status   *model.AssignmentStatus
}

func (r *AssignmentRepository) List(ctx context.Context, filter AssignmentListFilter) ([]model.Assignment, error) {
	q := r.db.WithContext(ctx).Model(&model.Assignment{})
	if filter.TruckID != nil {
		q = q.Where("truck_id = ?", *filter.TruckID)
	}
	if filter.DriverID != nil {
		q = q.Where("driver_id = ?", *filter.DriverID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var assignments []model.Assignment
	err := q.Order("assigned_at DESC").Find(&assignments).Error
	return assignments, err
}
