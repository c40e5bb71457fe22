package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/client"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

// FleetService — read model. Собирает согласованные представления по
// запросу, ничего не пишет и терпит слегка устаревший снимок: дубликаты и
// осиротевшие указатели, оставшиеся от допущенных частичных сбоев,
// вычищаются здесь при чтении.
type FleetService struct {
	truckRepo      *repository.TruckRepository
	driverRepo     *repository.DriverRepository
	assignmentRepo *repository.AssignmentRepository
	telematics     *client.TelematicsClient
	log            zerolog.Logger
}

func NewFleetService(
	truckRepo *repository.TruckRepository,
	driverRepo *repository.DriverRepository,
	assignmentRepo *repository.AssignmentRepository,
	telematics *client.TelematicsClient,
	log zerolog.Logger,
) *FleetService {
	return &FleetService{
		truckRepo:      truckRepo,
		driverRepo:     driverRepo,
		assignmentRepo: assignmentRepo,
		telematics:     telematics,
		log:            log,
	}
}

// AvailableDrivers — водители со статусом ACTIVE без текущего назначения.
func (s *FleetService) AvailableDrivers(ctx context.Context, principal model.Principal) ([]model.Driver, error) {
	if principal.IsDriver() {
		return nil, ErrPermissionDenied
	}
	return s.driverRepo.ListAvailable(ctx)
}

type TruckView struct {
	model.Truck
	EffectiveStatus model.TruckAvailability `json:"effective_status"`
}

// AvailableTrucks — грузовики без maintenance hold и не выведенные из
// эксплуатации, с фильтром по классу владения.
func (s *FleetService) AvailableTrucks(ctx context.Context, principal model.Principal, ownership *model.TruckOwnership) ([]TruckView, error) {
	if principal.IsDriver() {
		return nil, ErrPermissionDenied
	}

	trucks, err := s.truckRepo.List(ctx, repository.TruckListFilter{
		Ownership:   ownership,
		ExcludeHold: true,
		ExcludeStatuses: []model.TruckOccupancy{
			model.TruckOccupancyInactive,
			model.TruckOccupancySold,
			model.TruckOccupancyInsuranceClaim,
		},
	})
	if err != nil {
		return nil, err
	}

	views := make([]TruckView, 0, len(trucks))
	for _, t := range trucks {
		views = append(views, TruckView{Truck: t, EffectiveStatus: t.EffectiveStatus()})
	}
	return views, nil
}

type TruckComplianceView struct {
	Tax                ComplianceTier `json:"tax"`
	Insurance          ComplianceTier `json:"insurance"`
	Service            ComplianceTier `json:"service"`
	OdometerKM         int64          `json:"odometer_km"`
	RemainingServiceKM *int64         `json:"remaining_service_km"`
}

type TruckBoard struct {
	Truck             TruckView                    `json:"truck"`
	Entries           []model.TruckAssignmentEntry `json:"entries"`
	ActiveAssignments []model.Assignment           `json:"active_assignments"`
	Compliance        TruckComplianceView          `json:"compliance"`
}

// Board собирает сводку по грузовику: вылеченный список назначений,
// активные Assignment и ярусы срочности по продлениям и обслуживанию.
func (s *FleetService) Board(ctx context.Context, principal model.Principal, truckID string) (*TruckBoard, error) {
	if principal.IsDriver() {
		return nil, ErrPermissionDenied
	}

	id, err := uuid.Parse(truckID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	truck, err := s.truckRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entries, err := s.truckRepo.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.assignmentRepo.ListActiveByTruck(ctx, id)
	if err != nil {
		return nil, err
	}

	odometer := truck.CurrentOdometer
	if s.telematics != nil {
		reading, err := s.telematics.LatestOdometer(ctx, truck.PlateNumber)
		if err != nil {
			s.log.Debug().Err(err).Str("plate", truck.PlateNumber).Msg("telematics lookup failed, using stored odometer")
		} else if reading != nil && reading.OdometerKM > odometer {
			odometer = reading.OdometerKM
		}
	}

	today := time.Now()
	var remaining *int64
	if truck.NextServiceOdometer != nil {
		r := *truck.NextServiceOdometer - odometer
		remaining = &r
	}

	return &TruckBoard{
		Truck:             TruckView{Truck: *truck, EffectiveStatus: truck.EffectiveStatus()},
		Entries:           collapseEntries(entries),
		ActiveAssignments: active,
		Compliance: TruckComplianceView{
			Tax:                RenewalStatus(truck.Tax.Progress, truck.Tax.ExpiryDate, today),
			Insurance:          RenewalStatus(truck.Insurance.Progress, truck.Insurance.ExpiryDate, today),
			Service:            ClassifyServiceDue(truck.NextServiceDate, remaining, today),
			OdometerKM:         odometer,
			RemainingServiceKM: remaining,
		},
	}, nil
}

// collapseEntries схлопывает дубликаты по driver_id, оставляя самую свежую
// запись. Дубликаты — наследие допущенных частичных сбоев при завершении
// назначений; источником истины остаются записи Assignment.
func collapseEntries(entries []model.TruckAssignmentEntry) []model.TruckAssignmentEntry {
	byDriver := make(map[uuid.UUID]model.TruckAssignmentEntry, len(entries))
	order := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		existing, ok := byDriver[e.DriverID]
		if !ok {
			byDriver[e.DriverID] = e
			order = append(order, e.DriverID)
			continue
		}
		if e.AssignedAt.After(existing.AssignedAt) {
			byDriver[e.DriverID] = e
		}
	}

	collapsed := make([]model.TruckAssignmentEntry, 0, len(order))
	for _, driverID := range order {
		collapsed = append(collapsed, byDriver[driverID])
	}
	return collapsed
}
