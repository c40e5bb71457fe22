package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TruckOccupancy string

const (
	TruckOccupancyAvailable      TruckOccupancy = "AVAILABLE"
	TruckOccupancyOnDuty         TruckOccupancy = "ON_DUTY"
	TruckOccupancyInactive       TruckOccupancy = "INACTIVE"
	TruckOccupancySold           TruckOccupancy = "SOLD"
	TruckOccupancyInsuranceClaim TruckOccupancy = "INSURANCE_CLAIM"
)

type TruckOwnership string

const (
	TruckOwnershipOwned         TruckOwnership = "OWNED"
	TruckOwnershipSubcontractor TruckOwnership = "SUBCONTRACTOR"
)

// TruckAvailability — эффективный статус грузовика, доступный наружу.
// Внутри он хранится как пара (occupancy, maintenance_hold), чтобы
// Assignment Engine и Maintenance Lifecycle не писали в одно поле.
type TruckAvailability string

const (
	TruckAvailable      TruckAvailability = "AVAILABLE"
	TruckOnDuty         TruckAvailability = "ON_DUTY"
	TruckMaintenance    TruckAvailability = "MAINTENANCE"
	TruckInactive       TruckAvailability = "INACTIVE"
	TruckSold           TruckAvailability = "SOLD"
	TruckInsuranceClaim TruckAvailability = "INSURANCE_CLAIM"
)

type Truck struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PlateNumber     string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"plate_number"`
	Model           string         `gorm:"type:varchar(128)" json:"model"`
	Ownership       TruckOwnership `gorm:"type:truck_ownership;not null;default:OWNED" json:"ownership"`
	Occupancy       TruckOccupancy `gorm:"type:truck_occupancy;not null;default:AVAILABLE" json:"occupancy"`
	MaintenanceHold bool           `gorm:"not null;default:false" json:"maintenance_hold"`

	Tax       RenewalState `gorm:"embedded;embeddedPrefix:tax_" json:"tax"`
	Insurance RenewalState `gorm:"embedded;embeddedPrefix:insurance_" json:"insurance"`

	CurrentOdometer     int64      `gorm:"not null;default:0" json:"current_odometer"`
	NextServiceOdometer *int64     `json:"next_service_odometer"`
	NextServiceDate     *time.Time `json:"next_service_date"`
	LastServiceDate     *time.Time `json:"last_service_date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Truck) TableName() string {
	return "trucks"
}

func (t *Truck) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// EffectiveStatus сводит два под-статуса в один: maintenance hold всегда
// перекрывает occupancy.
func (t *Truck) EffectiveStatus() TruckAvailability {
	if t.MaintenanceHold {
		return TruckMaintenance
	}
	return TruckAvailability(t.Occupancy)
}

// TruckAssignmentEntry — запись в списке текущих назначений грузовика.
// Денормализованная проекция активных Assignment, ключ — assignment_id.
type TruckAssignmentEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	TruckID      uuid.UUID `gorm:"type:uuid;not null;index" json:"truck_id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assignment_id"`
	DriverID     uuid.UUID `gorm:"type:uuid;not null;index" json:"driver_id"`
	DriverName   string    `gorm:"type:varchar(128)" json:"driver_name"`
	AssignedAt   time.Time `gorm:"not null;default:now()" json:"assigned_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TruckAssignmentEntry) TableName() string {
	return "truck_assignment_entries"
}

func (e *TruckAssignmentEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.AssignedAt.IsZero() {
		e.AssignedAt = time.Now()
	}
	return nil
}
