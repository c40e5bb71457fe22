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

type AssignmentService struct {
	db             *gorm.DB
	truckRepo      *repository.TruckRepository
	driverRepo     *repository.DriverRepository
	assignmentRepo *repository.AssignmentRepository
	log            zerolog.Logger
}

func NewAssignmentService(
	db *gorm.DB,
	truckRepo *repository.TruckRepository,
	driverRepo *repository.DriverRepository,
	assignmentRepo *repository.AssignmentRepository,
	log zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		db:             db,
		truckRepo:      truckRepo,
		driverRepo:     driverRepo,
		assignmentRepo: assignmentRepo,
		log:            log,
	}
}

type CreateAssignmentInput struct {
	TruckID   string
	DriverID  string
	AdminName string
}

// Create назначает водителя на грузовик. Все проверки выполняются по живым
// документам внутри одной транзакции; имена и номер берутся из них же, а не
// из параметров вызова.
func (s *AssignmentService) Create(ctx context.Context, principal model.Principal, input CreateAssignmentInput) (*model.Assignment, error) {
	if !principal.IsDispatcher() && !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	truckID, err := uuid.Parse(input.TruckID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	driverID, err := uuid.Parse(input.DriverID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	createdBy := input.AdminName
	if createdBy == "" {
		createdBy = principal.Name
	}

	var assignment *model.Assignment
	err = runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		drivers := s.driverRepo.WithTx(tx)
		assignments := s.assignmentRepo.WithTx(tx)

		// Чтения с блокировкой строк — до первой записи.
		truck, err := trucks.GetByIDForUpdate(ctx, truckID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s", ErrNotFound, truckID)
			}
			return err
		}

		driver, err := drivers.GetByIDForUpdate(ctx, driverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: driver %s", ErrNotFound, driverID)
			}
			return err
		}

		entries, err := trucks.ListEntriesForUpdate(ctx, truckID)
		if err != nil {
			return err
		}

		occupiedPlate := ""
		if driver.CurrentAssignmentID != nil {
			if current, err := assignments.GetByID(ctx, *driver.CurrentAssignmentID); err == nil {
				occupiedPlate = current.TruckPlate
			}
		}

		if err := checkTruckAssignable(truck); err != nil {
			return err
		}
		if err := checkDriverFree(driver, occupiedPlate); err != nil {
			return err
		}
		if err := checkPairUnique(entries, driverID, truck.PlateNumber); err != nil {
			return err
		}

		now := time.Now()
		assignment = &model.Assignment{
			ID:         uuid.New(),
			TruckID:    truckID,
			DriverID:   driverID,
			DriverName: driver.FullName,
			TruckPlate: truck.PlateNumber,
			TruckModel: truck.Model,
			Status:     model.AssignmentStatusActive,
			AssignedAt: now,
			CreatedBy:  createdBy,
		}

		if err := assignments.Create(ctx, assignment); err != nil {
			return err
		}

		// Список назначений грузовика дополняется, не замещается.
		entry := &model.TruckAssignmentEntry{
			TruckID:      truckID,
			AssignmentID: assignment.ID,
			DriverID:     driverID,
			DriverName:   driver.FullName,
			AssignedAt:   now,
		}
		if err := trucks.AppendEntry(ctx, entry); err != nil {
			return err
		}

		if next := occupancyAfterAssign(truck.Occupancy); next != truck.Occupancy {
			if err := trucks.UpdateFields(ctx, truckID, map[string]interface{}{"occupancy": next}); err != nil {
				return err
			}
		}

		return drivers.UpdateFields(ctx, driverID, map[string]interface{}{
			"status":                model.DriverStatusOnDuty,
			"current_assignment_id": assignment.ID,
		})
	})
	if err != nil {
		// Частичные уникальные индексы дублируют проверки выше на случай
		// гонки между транзакциями.
		if uniqueViolation(err) {
			return nil, fmt.Errorf("%w: assignment already exists for driver or pair", ErrConflict)
		}
		return nil, err
	}

	s.log.Info().
		Str("assignment_id", assignment.ID.String()).
		Str("truck_plate", assignment.TruckPlate).
		Str("driver_name", assignment.DriverName).
		Msg("assignment created")

	return assignment, nil
}

// Terminate завершает активное назначение. Повторное завершение — Conflict.
// Отсутствие грузовика или водителя на момент завершения не отменяет
// отзыв: аудитная запись важнее денормализованных указателей, read model
// лечит хвосты при чтении.
func (s *AssignmentService) Terminate(ctx context.Context, principal model.Principal, id string) error {
	if !principal.IsDispatcher() && !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	assignmentID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidInput
	}

	return runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		drivers := s.driverRepo.WithTx(tx)
		assignments := s.assignmentRepo.WithTx(tx)

		assignment, err := assignments.GetByIDForUpdate(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: assignment %s", ErrNotFound, assignmentID)
			}
			return err
		}

		if err := checkTerminable(assignment); err != nil {
			return err
		}

		truck, err := trucks.GetByIDForUpdate(ctx, assignment.TruckID)
		truckMissing := false
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			truckMissing = true
		}

		driver, err := drivers.GetByIDForUpdate(ctx, assignment.DriverID)
		driverMissing := false
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			driverMissing = true
		}

		var entries []model.TruckAssignmentEntry
		if !truckMissing {
			entries, err = trucks.ListEntriesForUpdate(ctx, assignment.TruckID)
			if err != nil {
				return err
			}
		}

		now := time.Now()
		revokedBy := principal.Name
		assignment.Status = model.AssignmentStatusRevoked
		assignment.RevokedAt = &now
		assignment.RevokedBy = &revokedBy
		if err := assignments.Update(ctx, assignment); err != nil {
			return err
		}

		if truckMissing {
			s.log.Error().
				Str("assignment_id", assignment.ID.String()).
				Str("truck_id", assignment.TruckID.String()).
				Msg("truck missing at termination, entry cleanup skipped")
		} else {
			if err := trucks.DeleteEntryByAssignmentID(ctx, assignment.ID); err != nil {
				return err
			}
			remaining := 0
			for _, e := range entries {
				if e.AssignmentID != assignment.ID {
					remaining++
				}
			}
			if next := occupancyAfterRelease(truck.Occupancy, remaining); next != truck.Occupancy {
				if err := trucks.UpdateFields(ctx, truck.ID, map[string]interface{}{"occupancy": next}); err != nil {
					return err
				}
			}
		}

		if driverMissing {
			s.log.Error().
				Str("assignment_id", assignment.ID.String()).
				Str("driver_id", assignment.DriverID.String()).
				Msg("driver missing at termination, pointer cleanup skipped")
		} else {
			if err := drivers.UpdateFields(ctx, driver.ID, map[string]interface{}{
				"status":                model.DriverStatusActive,
				"current_assignment_id": nil,
			}); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *AssignmentService) Get(ctx context.Context, principal model.Principal, id string) (*model.Assignment, error) {
	assignmentID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidInput
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if principal.IsDriver() {
		if principal.DriverID == nil || *principal.DriverID != assignment.DriverID {
			return nil, ErrPermissionDenied
		}
	}

	return assignment, nil
}

func (s *AssignmentService) List(ctx context.Context, principal model.Principal, filter repository.AssignmentListFilter) ([]model.Assignment, error) {
	if principal.IsDriver() {
		if principal.DriverID == nil {
			return nil, ErrPermissionDenied
		}
		filter.DriverID = principal.DriverID
	}
	return s.assignmentRepo.List(ctx, filter)
}
