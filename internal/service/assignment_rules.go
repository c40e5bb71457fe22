package service

import (
	"fmt"

	"github.com/google/uuid"

	"fleet-service/internal/model"
)

// Чистые проверки инвариантов движка назначений. Работают над уже
// загруженными (и заблокированными) документами, сами в хранилище не ходят.

func checkTruckAssignable(truck *model.Truck) error {
	// Maintenance hold — жёсткий отказ, а не предупреждение: нельзя
	// назначать водителя на грузовик в ремонте.
	if truck.MaintenanceHold {
		return fmt.Errorf("%w: truck %s is under maintenance", ErrConflict, truck.PlateNumber)
	}
	switch truck.Occupancy {
	case model.TruckOccupancyInactive, model.TruckOccupancySold, model.TruckOccupancyInsuranceClaim:
		return fmt.Errorf("%w: truck %s is not in service (%s)", ErrConflict, truck.PlateNumber, truck.Occupancy)
	}
	return nil
}

// checkDriverFree отклоняет водителя с текущим назначением. occupiedPlate —
// номер грузовика, на котором водитель уже числится (пустая строка, если
// его не удалось разрешить).
func checkDriverFree(driver *model.Driver, occupiedPlate string) error {
	if driver.CurrentAssignmentID == nil {
		return nil
	}
	if occupiedPlate != "" {
		return fmt.Errorf("%w: driver %s is already assigned to truck %s", ErrConflict, driver.FullName, occupiedPlate)
	}
	return fmt.Errorf("%w: driver %s is already assigned", ErrConflict, driver.FullName)
}

// checkPairUnique запрещает дубль пары (truck, driver) среди текущих
// назначений грузовика. Несколько разных водителей на одном грузовике —
// допустимая конфигурация (сменная работа), список только дополняется.
func checkPairUnique(entries []model.TruckAssignmentEntry, driverID uuid.UUID, plate string) error {
	for _, e := range entries {
		if e.DriverID == driverID {
			return fmt.Errorf("%w: driver already assigned to truck %s", ErrConflict, plate)
		}
	}
	return nil
}

// checkTerminable — терминальное назначение нельзя завершить повторно,
// это защита от гонки двух запросов на завершение.
func checkTerminable(a *model.Assignment) error {
	if a.Status.Terminal() {
		return fmt.Errorf("%w: assignment already %s", ErrConflict, a.Status)
	}
	if a.Status != model.AssignmentStatusActive {
		return fmt.Errorf("%w: assignment is not active (%s)", ErrConflict, a.Status)
	}
	return nil
}

// occupancyAfterAssign переводит свободный грузовик в ON_DUTY; остальные
// значения occupancy движок назначений не трогает.
func occupancyAfterAssign(occ model.TruckOccupancy) model.TruckOccupancy {
	if occ == model.TruckOccupancyAvailable {
		return model.TruckOccupancyOnDuty
	}
	return occ
}

// occupancyAfterRelease возвращает AVAILABLE, когда после снятия
// назначения список опустел, иначе оставляет ON_DUTY.
func occupancyAfterRelease(occ model.TruckOccupancy, remaining int) model.TruckOccupancy {
	if remaining == 0 && occ == model.TruckOccupancyOnDuty {
		return model.TruckOccupancyAvailable
	}
	return occ
}
