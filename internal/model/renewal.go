package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RenewalType string

const (
	RenewalTypeTax       RenewalType = "TAX"
	RenewalTypeInsurance RenewalType = "INSURANCE"
)

type RenewalProgress string

const (
	RenewalProgressPending    RenewalProgress = "PENDING"
	RenewalProgressInProgress RenewalProgress = "IN_PROGRESS"
	RenewalProgressCompleted  RenewalProgress = "COMPLETED"
)

// RenewalState — состояние продления одного типа документа, встроено в
// Truck (tax_*, insurance_* колонки).
type RenewalState struct {
	Progress      RenewalProgress `gorm:"type:renewal_progress;not null;default:PENDING" json:"progress"`
	Responsible   string          `gorm:"type:varchar(128)" json:"responsible"`
	Expense       float64         `gorm:"not null;default:0" json:"expense"`
	PaymentMethod string          `gorm:"type:varchar(64)" json:"payment_method"`
	DocumentRef   *string         `gorm:"type:text" json:"document_ref"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
}

// RenewalLog — append-only журнал: строка пишется только при переходе
// продления в COMPLETED.
type RenewalLog struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TruckID       uuid.UUID   `gorm:"type:uuid;not null;index" json:"truck_id"`
	RenewalType   RenewalType `gorm:"type:renewal_type;not null" json:"renewal_type"`
	ExpiryDate    *time.Time  `json:"expiry_date"`
	Expense       float64     `gorm:"not null;default:0" json:"expense"`
	PaymentMethod string      `gorm:"type:varchar(64)" json:"payment_method"`
	Responsible   string      `gorm:"type:varchar(128)" json:"responsible"`
	CompletedAt   time.Time   `gorm:"not null;default:now()" json:"completed_at"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (RenewalLog) TableName() string {
	return "renewal_logs"
}

func (l *RenewalLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CompletedAt.IsZero() {
		l.CompletedAt = time.Now()
	}
	return nil
}
