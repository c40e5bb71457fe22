package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func newTruck(plate string) *model.Truck {
	return &model.Truck{
		ID:          uuid.New(),
		PlateNumber: plate,
		Occupancy:   model.TruckOccupancyAvailable,
	}
}

func newDriver(name string) *model.Driver {
	return &model.Driver{
		ID:       uuid.New(),
		FullName: name,
		Status:   model.DriverStatusActive,
	}
}

func entryFor(truck *model.Truck, driver *model.Driver, assignmentID uuid.UUID, at time.Time) model.TruckAssignmentEntry {
	return model.TruckAssignmentEntry{
		ID:           uuid.New(),
		TruckID:      truck.ID,
		AssignmentID: assignmentID,
		DriverID:     driver.ID,
		DriverName:   driver.FullName,
		AssignedAt:   at,
	}
}

func TestMultiDriverTruckAllowed(t *testing.T) {
	truck := newTruck("KZ123ABC")
	d1 := newDriver("Driver One")
	d2 := newDriver("Driver Two")

	// Первое назначение: пустой список, свободный грузовик
	require.NoError(t, checkTruckAssignable(truck))
	require.NoError(t, checkDriverFree(d1, ""))
	require.NoError(t, checkPairUnique(nil, d1.ID, truck.PlateNumber))

	truck.Occupancy = occupancyAfterAssign(truck.Occupancy)
	require.Equal(t, model.TruckOccupancyOnDuty, truck.Occupancy)

	a1 := uuid.New()
	entries := []model.TruckAssignmentEntry{entryFor(truck, d1, a1, time.Now())}

	// Второй водитель на том же грузовике — допустимо, список дополняется
	require.NoError(t, checkTruckAssignable(truck))
	require.NoError(t, checkPairUnique(entries, d2.ID, truck.PlateNumber))

	// Занятый грузовик остаётся ON_DUTY
	require.Equal(t, model.TruckOccupancyOnDuty, occupancyAfterAssign(truck.Occupancy))
}

func TestDoubleBookedDriverRejected(t *testing.T) {
	d1 := newDriver("Driver One")
	currentID := uuid.New()
	d1.CurrentAssignmentID = &currentID

	err := checkDriverFree(d1, "KZ123ABC")
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "KZ123ABC")

	// Табличка не разрешилась — конфликт всё равно жёсткий
	err = checkDriverFree(d1, "")
	require.ErrorIs(t, err, ErrConflict)
}

func TestDuplicatePairRejected(t *testing.T) {
	truck := newTruck("KZ777XYZ")
	d1 := newDriver("Driver One")
	entries := []model.TruckAssignmentEntry{entryFor(truck, d1, uuid.New(), time.Now())}

	err := checkPairUnique(entries, d1.ID, truck.PlateNumber)
	require.ErrorIs(t, err, ErrConflict)
}

func TestMaintenanceHoldBlocksAssignment(t *testing.T) {
	truck := newTruck("KZ555MNT")
	truck.Occupancy = model.TruckOccupancyOnDuty
	truck.MaintenanceHold = true

	err := checkTruckAssignable(truck)
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "maintenance")
}

func TestDecommissionedTruckRejected(t *testing.T) {
	for _, occ := range []model.TruckOccupancy{
		model.TruckOccupancyInactive,
		model.TruckOccupancySold,
		model.TruckOccupancyInsuranceClaim,
	} {
		truck := newTruck("KZ000DEC")
		truck.Occupancy = occ
		if err := checkTruckAssignable(truck); !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict for occupancy %s, got %v", occ, err)
		}
	}
}

func TestDoubleTerminateRejected(t *testing.T) {
	a := &model.Assignment{
		ID:     uuid.New(),
		Status: model.AssignmentStatusActive,
	}
	require.NoError(t, checkTerminable(a))

	now := time.Now()
	a.Status = model.AssignmentStatusRevoked
	a.RevokedAt = &now

	// Второе завершение того же назначения — Conflict, не тихий успех
	err := checkTerminable(a)
	require.ErrorIs(t, err, ErrConflict)

	a.Status = model.AssignmentStatusCancelled
	require.ErrorIs(t, checkTerminable(a), ErrConflict)
}

func TestOccupancyAfterRelease(t *testing.T) {
	// Список опустел — грузовик снова свободен
	require.Equal(t, model.TruckOccupancyAvailable,
		occupancyAfterRelease(model.TruckOccupancyOnDuty, 0))
	// Остались другие назначения — остаётся занятым
	require.Equal(t, model.TruckOccupancyOnDuty,
		occupancyAfterRelease(model.TruckOccupancyOnDuty, 1))
	// Выведенный из эксплуатации статус не трогаем
	require.Equal(t, model.TruckOccupancyInactive,
		occupancyAfterRelease(model.TruckOccupancyInactive, 0))
}

// Последовательность из спецификации поведения: назначить двух водителей на
// T, попытаться увести первого на T2.
func TestAssignmentSequenceInvariant(t *testing.T) {
	truckT := newTruck("T")
	truckT2 := newTruck("T2")
	d1 := newDriver("D1")
	d2 := newDriver("D2")

	// createAssignment(T, D1)
	require.NoError(t, checkTruckAssignable(truckT))
	require.NoError(t, checkDriverFree(d1, ""))
	a1 := uuid.New()
	entries := []model.TruckAssignmentEntry{entryFor(truckT, d1, a1, time.Now())}
	truckT.Occupancy = occupancyAfterAssign(truckT.Occupancy)
	d1.Status = model.DriverStatusOnDuty
	d1.CurrentAssignmentID = &a1

	// createAssignment(T, D2) — мультиводительский грузовик
	require.NoError(t, checkPairUnique(entries, d2.ID, truckT.PlateNumber))
	a2 := uuid.New()
	entries = append(entries, entryFor(truckT, d2, a2, time.Now()))
	require.Len(t, entries, 2)

	// createAssignment(T2, D1) — водитель уже занят
	err := checkDriverFree(d1, truckT.PlateNumber)
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "T")

	// Ни в какой момент D1 не числится в двух активных назначениях
	require.NoError(t, checkTruckAssignable(truckT2))
	require.NotNil(t, d1.CurrentAssignmentID)
	require.Equal(t, a1, *d1.CurrentAssignmentID)
}
