package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/utils"
)

// RegistryService — онбординг грузовиков и водителей. Дальше эти документы
// мутируют только движок назначений, обслуживание и продления, каждый в
// своём срезе полей.
type RegistryService struct {
	truckRepo  *repository.TruckRepository
	driverRepo *repository.DriverRepository
	log        zerolog.Logger
}

func NewRegistryService(
	truckRepo *repository.TruckRepository,
	driverRepo *repository.DriverRepository,
	log zerolog.Logger,
) *RegistryService {
	return &RegistryService{
		truckRepo:  truckRepo,
		driverRepo: driverRepo,
		log:        log,
	}
}

type RegisterTruckInput struct {
	PlateNumber     string
	Model           string
	Ownership       string
	CurrentOdometer int64
	TaxExpiry       *string
	InsuranceExpiry *string
}

func (s *RegistryService) RegisterTruck(ctx context.Context, principal model.Principal, input RegisterTruckInput) (*model.Truck, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	plate := utils.NormalizePlate(input.PlateNumber)
	if plate == "" {
		return nil, ErrInvalidInput
	}

	ownership := model.TruckOwnership(input.Ownership)
	if ownership == "" {
		ownership = model.TruckOwnershipOwned
	}
	if ownership != model.TruckOwnershipOwned && ownership != model.TruckOwnershipSubcontractor {
		return nil, ErrInvalidInput
	}

	taxExpiry, err := parseOptionalDate(input.TaxExpiry)
	if err != nil {
		return nil, ErrInvalidInput
	}
	insuranceExpiry, err := parseOptionalDate(input.InsuranceExpiry)
	if err != nil {
		return nil, ErrInvalidInput
	}

	if existing, err := s.truckRepo.GetByPlate(ctx, plate); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: truck %s already registered", ErrConflict, plate)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	truck := &model.Truck{
		PlateNumber:     plate,
		Model:           input.Model,
		Ownership:       ownership,
		Occupancy:       model.TruckOccupancyAvailable,
		CurrentOdometer: input.CurrentOdometer,
		Tax:             model.RenewalState{Progress: model.RenewalProgressPending, ExpiryDate: taxExpiry},
		Insurance:       model.RenewalState{Progress: model.RenewalProgressPending, ExpiryDate: insuranceExpiry},
	}

	if err := s.truckRepo.Create(ctx, truck); err != nil {
		return nil, err
	}

	s.log.Info().Str("plate", plate).Msg("truck registered")
	return truck, nil
}

type RegisterDriverInput struct {
	FullName string
}

func (s *RegistryService) RegisterDriver(ctx context.Context, principal model.Principal, input RegisterDriverInput) (*model.Driver, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	if input.FullName == "" {
		return nil, ErrInvalidInput
	}

	driver := &model.Driver{
		FullName: input.FullName,
		Status:   model.DriverStatusActive,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	s.log.Info().Str("driver", driver.FullName).Msg("driver registered")
	return driver, nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
