package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-service/internal/model"
)

type TruckRepository struct {
	db *gorm.DB
}

func NewTruckRepository(db *gorm.DB) *TruckRepository {
	return &TruckRepository{db: db}
}

// WithTx возвращает репозиторий, работающий внутри переданной транзакции.
func (r *TruckRepository) WithTx(tx *gorm.DB) *TruckRepository {
	return &TruckRepository{db: tx}
}

func (r *TruckRepository) Create(ctx context.Context, truck *model.Truck) error {
	return r.db.WithContext(ctx).Create(truck).Error
}

func (r *TruckRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Truck, error) {
	var truck model.Truck
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&truck).Error
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

// GetByIDForUpdate читает грузовик с блокировкой строки. Все чтения
// транзакции идут через ForUpdate-варианты до первой записи.
func (r *TruckRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Truck, error) {
	var truck model.Truck
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&truck).Error
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

func (r *TruckRepository) GetByPlate(ctx context.Context, plate string) (*model.Truck, error) {
	var truck model.Truck
	err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&truck).Error
	if err != nil {
		return nil, err
	}
	return &truck, nil
}

func (r *TruckRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Truck{}).
		Where("id = ?", id).
		Updates(fields).Error
}

type TruckListFilter struct {
	Ownership       *model.TruckOwnership
	ExcludeHold     bool
	ExcludeStatuses []model.TruckOccupancy
}

func (r *TruckRepository) List(ctx context.Context, filter TruckListFilter) ([]model.Truck, error) {
	q := r.db.WithContext(ctx).Model(&model.Truck{})
	if filter.Ownership != nil {
		q = q.Where("ownership = ?", *filter.Ownership)
	}
	if filter.ExcludeHold {
		q = q.Where("maintenance_hold = ?", false)
	}
	if len(filter.ExcludeStatuses) > 0 {
		q = q.Where("occupancy NOT IN ?", filter.ExcludeStatuses)
	}

	var trucks []model.Truck
	err := q.Order("plate_number ASC").Find(&trucks).Error
	return trucks, err
}

func (r *TruckRepository) ListEntries(ctx context.Context, truckID uuid.UUID) ([]model.TruckAssignmentEntry, error) {
	var entries []model.TruckAssignmentEntry
	err := r.db.WithContext(ctx).
		Where("truck_id = ?", truckID).
		Order("assigned_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *TruckRepository) ListEntriesForUpdate(ctx context.Context, truckID uuid.UUID) ([]model.TruckAssignmentEntry, error) {
	var entries []model.TruckAssignmentEntry
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("truck_id = ?", truckID).
		Order("assigned_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *TruckRepository) AppendEntry(ctx context.Context, entry *model.TruckAssignmentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TruckRepository) DeleteEntryByAssignmentID(ctx context.Context, assignmentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Delete(&model.TruckAssignmentEntry{}).Error
}
