package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "ACTIVE"
	DriverStatusOnDuty   DriverStatus = "ON_DUTY"
	DriverStatusInactive DriverStatus = "INACTIVE"
)

type Driver struct {
	ID                  uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	FullName            string       `gorm:"type:varchar(128);not null" json:"full_name"`
	Status              DriverStatus `gorm:"type:driver_status;not null;default:ACTIVE" json:"status"`
	CurrentAssignmentID *uuid.UUID   `gorm:"type:uuid" json:"current_assignment_id"`
	CreatedAt           time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
