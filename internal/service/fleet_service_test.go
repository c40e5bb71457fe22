package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

func TestCollapseEntriesKeepsNewestPerDriver(t *testing.T) {
	truckID := uuid.New()
	driverA := uuid.New()
	driverB := uuid.New()

	old := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fresh := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	entries := []model.TruckAssignmentEntry{
		// Хвост от частичного сбоя: тот же водитель дважды
		{ID: uuid.New(), TruckID: truckID, AssignmentID: uuid.New(), DriverID: driverA, AssignedAt: old},
		{ID: uuid.New(), TruckID: truckID, AssignmentID: uuid.New(), DriverID: driverB, AssignedAt: old},
		{ID: uuid.New(), TruckID: truckID, AssignmentID: uuid.New(), DriverID: driverA, AssignedAt: fresh},
	}

	collapsed := collapseEntries(entries)
	require.Len(t, collapsed, 2)

	byDriver := map[uuid.UUID]model.TruckAssignmentEntry{}
	for _, e := range collapsed {
		byDriver[e.DriverID] = e
	}
	require.Equal(t, fresh, byDriver[driverA].AssignedAt)
	require.Equal(t, old, byDriver[driverB].AssignedAt)
}

func TestCollapseEntriesPreservesOrder(t *testing.T) {
	truckID := uuid.New()
	at := time.Now()

	var entries []model.TruckAssignmentEntry
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		entries = append(entries, model.TruckAssignmentEntry{
			ID:           uuid.New(),
			TruckID:      truckID,
			AssignmentID: uuid.New(),
			DriverID:     ids[i],
			AssignedAt:   at.Add(time.Duration(i) * time.Minute),
		})
	}

	collapsed := collapseEntries(entries)
	require.Len(t, collapsed, 3)
	for i, e := range collapsed {
		require.Equal(t, ids[i], e.DriverID)
	}
}

func TestCollapseEntriesEmpty(t *testing.T) {
	require.Empty(t, collapseEntries(nil))
}
