package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-service/internal/model"
)

type RenewalLogRepository struct {
	db *gorm.DB
}

func NewRenewalLogRepository(db *gorm.DB) *RenewalLogRepository {
	return &RenewalLogRepository{db: db}
}

func (r *RenewalLogRepository) WithTx(tx *gorm.DB) *RenewalLogRepository {
	return &RenewalLogRepository{db: tx}
}

// Append добавляет запись журнала. Журнал только растёт, записи не
// изменяются и не удаляются.
func (r *RenewalLogRepository) Append(ctx context.Context, log *model.RenewalLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *RenewalLogRepository) ListByTruck(ctx context.Context, truckID uuid.UUID) ([]model.RenewalLog, error) {
	var logs []model.RenewalLog
	err := r.db.WithContext(ctx).
		Where("truck_id = ?", truckID).
		Order("completed_at DESC").
		Find(&logs).Error
	return logs, err
}
