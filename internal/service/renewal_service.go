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

type RenewalService struct {
	db             *gorm.DB
	truckRepo      *repository.TruckRepository
	renewalLogRepo *repository.RenewalLogRepository
	log            zerolog.Logger
}

func NewRenewalService(
	db *gorm.DB,
	truckRepo *repository.TruckRepository,
	renewalLogRepo *repository.RenewalLogRepository,
	log zerolog.Logger,
) *RenewalService {
	return &RenewalService{
		db:             db,
		truckRepo:      truckRepo,
		renewalLogRepo: renewalLogRepo,
		log:            log,
	}
}

func parseRenewalType(raw string) (model.RenewalType, string, error) {
	switch model.RenewalType(raw) {
	case model.RenewalTypeTax:
		return model.RenewalTypeTax, "tax_", nil
	case model.RenewalTypeInsurance:
		return model.RenewalTypeInsurance, "insurance_", nil
	default:
		return "", "", ErrInvalidInput
	}
}

func renewalStateFor(truck *model.Truck, rtype model.RenewalType) model.RenewalState {
	if rtype == model.RenewalTypeTax {
		return truck.Tax
	}
	return truck.Insurance
}

// Start переводит продление в IN_PROGRESS. Повторный запуск уже идущего
// продления — Conflict; из COMPLETED начинается новый цикл.
func (s *RenewalService) Start(ctx context.Context, principal model.Principal, truckID, renewalType, responsible string) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	id, err := uuid.Parse(truckID)
	if err != nil {
		return ErrInvalidInput
	}

	rtype, prefix, err := parseRenewalType(renewalType)
	if err != nil {
		return err
	}

	return runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)

		truck, err := trucks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s", ErrNotFound, id)
			}
			return err
		}

		state := renewalStateFor(truck, rtype)
		if state.Progress == model.RenewalProgressInProgress {
			return fmt.Errorf("%w: %s renewal already in progress for truck %s", ErrConflict, rtype, truck.PlateNumber)
		}

		return trucks.UpdateFields(ctx, id, map[string]interface{}{
			prefix + "progress":    model.RenewalProgressInProgress,
			prefix + "responsible": responsible,
		})
	})
}

type CompleteRenewalInput struct {
	NewExpiry     string
	Expense       float64
	PaymentMethod string
	DocumentRef   *string
}

// Complete закрывает продление: обновляет дату истечения на грузовике и
// пишет строку в append-only журнал. Строка журнала появляется только на
// этом переходе.
func (s *RenewalService) Complete(ctx context.Context, principal model.Principal, truckID, renewalType string, input CompleteRenewalInput) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}

	id, err := uuid.Parse(truckID)
	if err != nil {
		return ErrInvalidInput
	}

	rtype, prefix, err := parseRenewalType(renewalType)
	if err != nil {
		return err
	}

	newExpiry, err := time.Parse(time.RFC3339, input.NewExpiry)
	if err != nil {
		return ErrInvalidInput
	}

	return runInTx(ctx, s.db, func(tx *gorm.DB) error {
		trucks := s.truckRepo.WithTx(tx)
		logs := s.renewalLogRepo.WithTx(tx)

		truck, err := trucks.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: truck %s", ErrNotFound, id)
			}
			return err
		}

		state := renewalStateFor(truck, rtype)
		if state.Progress != model.RenewalProgressInProgress {
			return fmt.Errorf("%w: %s renewal is not in progress for truck %s", ErrConflict, rtype, truck.PlateNumber)
		}

		now := time.Now()
		if err := trucks.UpdateFields(ctx, id, map[string]interface{}{
			prefix + "progress":       model.RenewalProgressCompleted,
			prefix + "expiry_date":    newExpiry,
			prefix + "expense":        input.Expense,
			prefix + "payment_method": input.PaymentMethod,
			prefix + "document_ref":   input.DocumentRef,
		}); err != nil {
			return err
		}

		return logs.Append(ctx, &model.RenewalLog{
			TruckID:       id,
			RenewalType:   rtype,
			ExpiryDate:    &newExpiry,
			Expense:       input.Expense,
			PaymentMethod: input.PaymentMethod,
			Responsible:   state.Responsible,
			CompletedAt:   now,
		})
	})
}

func (s *RenewalService) History(ctx context.Context, principal model.Principal, truckID string) ([]model.RenewalLog, error) {
	if principal.IsDriver() {
		return nil, ErrPermissionDenied
	}

	id, err := uuid.Parse(truckID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	return s.renewalLogRepo.ListByTruck(ctx, id)
}
