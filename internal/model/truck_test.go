package model

import "testing"

func TestEffectiveStatusPrecedence(t *testing.T) {
	truck := &Truck{Occupancy: TruckOccupancyOnDuty}
	if got := truck.EffectiveStatus(); got != TruckOnDuty {
		t.Fatalf("expected ON_DUTY, got %s", got)
	}

	// Hold перекрывает occupancy, какое бы оно ни было
	truck.MaintenanceHold = true
	if got := truck.EffectiveStatus(); got != TruckMaintenance {
		t.Fatalf("expected MAINTENANCE, got %s", got)
	}

	truck.Occupancy = TruckOccupancyAvailable
	if got := truck.EffectiveStatus(); got != TruckMaintenance {
		t.Fatalf("expected MAINTENANCE over AVAILABLE, got %s", got)
	}

	truck.MaintenanceHold = false
	if got := truck.EffectiveStatus(); got != TruckAvailable {
		t.Fatalf("expected AVAILABLE, got %s", got)
	}
}

func TestAssignmentStatusTerminal(t *testing.T) {
	if AssignmentStatusActive.Terminal() {
		t.Fatalf("ACTIVE must not be terminal")
	}
	if !AssignmentStatusRevoked.Terminal() {
		t.Fatalf("REVOKED must be terminal")
	}
	if !AssignmentStatusCancelled.Terminal() {
		t.Fatalf("CANCELLED must be terminal")
	}
}

func TestMaintenanceStatusTerminal(t *testing.T) {
	if MaintenanceStatusInProgress.Terminal() {
		t.Fatalf("IN_PROGRESS must not be terminal")
	}
	if !MaintenanceStatusCompleted.Terminal() || !MaintenanceStatusCancelled.Terminal() {
		t.Fatalf("COMPLETED and CANCELLED must be terminal")
	}
}
