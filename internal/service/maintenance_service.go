package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
)

type MaintenanceService struct {
	db              *gorm.DB
	truckRepo       *repository.TruckRepository
	maintenanceRepo *repository.MaintenanceRepository
	log             zerolog.Logger
}

func NewMaintenanceService(
	db *gorm.DB,
	truckRepo *repository.TruckRepository,
	maintenanceRepo *repository.MaintenanceRepository,
	log zerolog.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		db:              db,
		truckRepo:       truckRepo,
		maintenanceRepo: maintenanceRepo,
		log:             log,
	}
}

type OpenJobInput struct {
	TruckID            string
	Category           string
	ServiceDescription string
	StartDate          string
	LaborCost          float64
	PartsCost          float64
	Odometer           *int64
	Provider           string
	PaymentMethod      string
	ReceiptRef         *string
}

// Open открывает сервисную работу и ставит maintenance hold. Hold
// перекрывает occupancy: активное назначение при этом скрывается за
// статусом MAINTENANCE — это задокументированный приоритет ремонта.
func (s *MaintenanceService) Open(ctx context.Context, principal model.Principal, input OpenJobInput) (*model.MaintenanceJob, error) {
	if !principal.IsMechanic() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	truckID, err := uuid.Parse(input.TruckID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	category := model.MaintenanceCategory(input.Category)
	if category != model.MaintenanceCategoryPreventive && category != model.MaintenanceCategoryCorrective {
		return nil, ErrInvalidInput
	}

	startDate, err := time.Parse(time.RFC3339, input.StartDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	var job *model.MaintenanceJob
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		jobs := s.maintenanceRepo.WithTx(tx)

		truck, err := trucks.GetByIDForUpdate(ctx, truckID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s", ErrNotFound, truckID)
			}
			return err
		}

		open, err := jobs.FindOpenByTruckForUpdate(ctx, truckID)
		if err != nil {
			return err
		}
		if open != nil {
			return fmt.Errorf("%w: truck %s already has a maintenance job in progress", ErrConflict, truck.PlateNumber)
		}

		job = &model.MaintenanceJob{
			ID:                 uuid.New(),
			TruckID:            truckID,
			Category:           category,
			ServiceDescription: input.ServiceDescription,
			Status:             model.MaintenanceStatusInProgress,
			StartDate:          startDate,
			LaborCost:          input.LaborCost,
			PartsCost:          input.PartsCost,
			TotalCost:          input.LaborCost + input.PartsCost,
			OdometerAtService:  input.Odometer,
			Provider:           input.Provider,
			PaymentMethod:      input.PaymentMethod,
			ReceiptRef:         input.ReceiptRef,
		}
		if err := jobs.Create(ctx, job); err != nil {
			return err
		}

		return trucks.UpdateFields(ctx, truckID, map[string]interface{}{"maintenance_hold": true})
	})
	if err != nil {
		if uniqueViolation(err) {
			return nil, fmt.Errorf("%w: truck already has a maintenance job in progress", ErrConflict)
		}
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID.String()).
		Str("truck_id", truckID.String()).
		Str("category", string(job.Category)).
		Msg("maintenance job opened")

	return job, nil
}

type CloseJobInput struct {
	EndDate             string
	LaborCost           float64
	PartsCost           float64
	FinalOdometer       *int64
	NextServiceOdometer *int64
	NextServiceDate     *string
}

// Close завершает работу и снимает maintenance hold. Occupancy при этом не
// трогается: состоит ли грузовик в назначении, решает движок назначений,
// поэтому статус никогда не восстанавливается сразу в ON_DUTY.
func (s *MaintenanceService) Close(ctx context.Context, principal model.Principal, id string, input CloseJobInput) (*model.MaintenanceJob, error) {
	if !principal.IsMechanic() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}

	endDate, err := time.Parse(time.RFC3339, input.EndDate)
	if err != nil {
		return nil, ErrInvalidInput
	}

	var nextServiceDate *time.Time
	if input.NextServiceDate != nil {
		t, err := time.Parse(time.RFC3339, *input.NextServiceDate)
		if err != nil {
			return nil, ErrInvalidInput
		}
		nextServiceDate = &t
	}

	var job *model.MaintenanceJob
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		jobs := s.maintenanceRepo.WithTx(tx)

		job, err = jobs.GetByIDForUpdate(ctx, jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: maintenance job %s", ErrNotFound, jobID)
			}
			return err
		}
		if job.Status != model.MaintenanceStatusInProgress {
			return fmt.Errorf("%w: maintenance job already %s", ErrConflict, job.Status)
		}

		truck, err := trucks.GetByIDForUpdate(ctx, job.TruckID)
		truckMissing := false
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			truckMissing = true
		}

		job.Status = model.MaintenanceStatusCompleted
		job.EndDate = &endDate
		job.LaborCost = input.LaborCost
		job.PartsCost = input.PartsCost
		job.TotalCost = input.LaborCost + input.PartsCost
		if input.FinalOdometer != nil {
			job.OdometerAtService = input.FinalOdometer
		}
		if input.NextServiceOdometer != nil {
			job.NextServiceOdometer = input.NextServiceOdometer
		}
		if err := jobs.Update(ctx, job); err != nil {
			return err
		}

		if truckMissing {
			// Работа всё равно закрывается, рассинхрон фиксируем в логе.
			s.log.Error().
				Str("job_id", job.ID.String()).
				Str("truck_id", job.TruckID.String()).
				Msg("truck missing at job close, truck update skipped")
			return nil
		}

		fields := map[string]interface{}{
			"maintenance_hold":  false,
			"last_service_date": endDate,
		}
		if input.FinalOdometer != nil {
			fields["current_odometer"] = *input.FinalOdometer
		}
		if job.Category == model.MaintenanceCategoryPreventive {
			if input.NextServiceOdometer != nil {
				fields["next_service_odometer"] = *input.NextServiceOdometer
			}
			if nextServiceDate != nil {
				fields["next_service_date"] = *nextServiceDate
			}
		}
		return trucks.UpdateFields(ctx, truck.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("job_id", job.ID.String()).
		Float64("total_cost", job.TotalCost).
		Msg("maintenance job closed")

	return job, nil
}

// Cancel переводит работу в CANCELLED и снимает hold без обновления
// одометра и дат обслуживания.
func (s *MaintenanceService) Cancel(ctx context.Context, principal model.Principal, id string) error {
	if !principal.IsMechanic() && !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidInput
	}

	return runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		jobs := s.maintenanceRepo.WithTx(tx)

		job, err := jobs.GetByIDForUpdate(ctx, jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: maintenance job %s", ErrNotFound, jobID)
			}
			return err
		}
		if job.Status != model.MaintenanceStatusInProgress {
			return fmt.Errorf("%w: maintenance job already %s", ErrConflict, job.Status)
		}

		_, err = trucks.GetByIDForUpdate(ctx, job.TruckID)
		truckMissing := false
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			truckMissing = true
		}

		now := time.Now()
		job.Status = model.MaintenanceStatusCancelled
		job.EndDate = &now
		if err := jobs.Update(ctx, job); err != nil {
			return err
		}

		if truckMissing {
			s.log.Error().
				Str("job_id", job.ID.String()).
				Str("truck_id", job.TruckID.String()).
				Msg("truck missing at job cancel, hold release skipped")
			return nil
		}

		return trucks.UpdateFields(ctx, job.TruckID, map[string]interface{}{"maintenance_hold": false})
	})
}

func (s *MaintenanceService) ListByTruck(ctx context.Context, principal model.Principal, truckID string) ([]model.MaintenanceJob, error) {
	id, err := uuid.Parse(truckID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.maintenanceRepo.ListByTruck(ctx, id)
}
