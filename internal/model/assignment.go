package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentStatus string

const (
	AssignmentStatusActive  AssignmentStatus = "ACTIVE"
	AssignmentStatusRevoked AssignmentStatus = "REVOKED"
	// CANCELLED зарезервирован для отклонения до активации; текущие
	// операции его не создают.
	AssignmentStatusCancelled AssignmentStatus = "CANCELLED"
)

// Assignment никогда не удаляется — только переводится в терминальный
// статус, история назначений служит аудитом.
type Assignment struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TruckID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"truck_id"`
	DriverID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"driver_id"`
	DriverName string           `gorm:"type:varchar(128)" json:"driver_name"`
	TruckPlate string           `gorm:"type:varchar(32)" json:"truck_plate"`
	TruckModel string           `gorm:"type:varchar(128)" json:"truck_model"`
	Status     AssignmentStatus `gorm:"type:assignment_status;not null;default:ACTIVE" json:"status"`
	AssignedAt time.Time        `gorm:"not null;default:now()" json:"assigned_at"`
	RevokedAt  *time.Time       `json:"revoked_at"`
	CreatedBy  string           `gorm:"type:varchar(128)" json:"created_by"`
	RevokedBy  *string          `gorm:"type:varchar(128)" json:"revoked_by"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now()
	}
	return nil
}

func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentStatusRevoked || s == AssignmentStatusCancelled
}
