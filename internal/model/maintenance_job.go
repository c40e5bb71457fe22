package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceStatus string

const (
	MaintenanceStatusInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceStatusCancelled  MaintenanceStatus = "CANCELLED"
)

type MaintenanceCategory string

const (
	MaintenanceCategoryPreventive MaintenanceCategory = "PM"
	MaintenanceCategoryCorrective MaintenanceCategory = "CM"
)

type MaintenanceJob struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TruckID             uuid.UUID           `gorm:"type:uuid;not null;index" json:"truck_id"`
	Category            MaintenanceCategory `gorm:"type:maintenance_category;not null" json:"category"`
	ServiceDescription  string              `gorm:"type:text" json:"service_description"`
	Status              MaintenanceStatus   `gorm:"type:maintenance_status;not null;default:IN_PROGRESS" json:"status"`
	StartDate           time.Time           `gorm:"not null" json:"start_date"`
	EndDate             *time.Time          `json:"end_date"`
	LaborCost           float64             `gorm:"not null;default:0" json:"labor_cost"`
	PartsCost           float64             `gorm:"not null;default:0" json:"parts_cost"`
	TotalCost           float64             `gorm:"not null;default:0" json:"total_cost"`
	OdometerAtService   *int64              `json:"odometer_at_service"`
	NextServiceOdometer *int64              `json:"next_service_odometer"`
	Provider            string              `gorm:"type:varchar(128)" json:"provider"`
	PaymentMethod       string              `gorm:"type:varchar(64)" json:"payment_method"`
	ReceiptRef          *string             `gorm:"type:text" json:"receipt_ref"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MaintenanceJob) TableName() string {
	return "maintenance_jobs"
}

func (j *MaintenanceJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

func (s MaintenanceStatus) Terminal() bool {
	return s == MaintenanceStatusCompleted || s == MaintenanceStatusCancelled
}
