package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fleet-service/internal/model"
)

var complianceToday = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClassifyExpiry(t *testing.T) {
	tests := []struct {
		name   string
		expiry *time.Time
		want   ComplianceTier
	}{
		{"past date", datePtr(2024, 5, 15), TierOverdue},
		{"within 30 days", datePtr(2024, 6, 20), TierExpiringSoon},
		{"today counts as expiring", datePtr(2024, 6, 1), TierExpiringSoon},
		{"exactly 30 days", datePtr(2024, 7, 1), TierExpiringSoon},
		{"within 60 days", datePtr(2024, 7, 20), TierIncoming},
		{"exactly 60 days", datePtr(2024, 7, 31), TierIncoming},
		{"beyond 60 days", datePtr(2025, 1, 1), TierOK},
		// Отсутствие даты налога/страховки — fail-closed
		{"missing date", nil, TierOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyExpiry(tt.expiry, complianceToday))
		})
	}
}

func TestClassifyServiceDue(t *testing.T) {
	kmPtr := func(v int64) *int64 { return &v }

	tests := []struct {
		name      string
		nextDate  *time.Time
		remaining *int64
		want      ComplianceTier
	}{
		// Грузовик без графика обслуживания ещё не просрочен — fail-open
		{"no schedule at all", nil, nil, TierOK},
		{"date overdue", datePtr(2024, 5, 15), nil, TierOverdue},
		{"date incoming", datePtr(2024, 7, 20), nil, TierIncoming},
		{"negative distance", nil, kmPtr(-100), TierOverdue},
		{"zero distance", nil, kmPtr(0), TierExpiringSoon},
		{"2000 km boundary", nil, kmPtr(2000), TierExpiringSoon},
		{"2001 km", nil, kmPtr(2001), TierIncoming},
		{"5000 km boundary", nil, kmPtr(5000), TierIncoming},
		{"beyond 5000 km", nil, kmPtr(5001), TierOK},
		// При двух сигналах побеждает более срочный
		{"date ok but distance overdue", datePtr(2025, 1, 1), kmPtr(-1), TierOverdue},
		{"date expiring beats distance incoming", datePtr(2024, 6, 20), kmPtr(3000), TierExpiringSoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyServiceDue(tt.nextDate, tt.remaining, complianceToday))
		})
	}
}

func TestWorstTier(t *testing.T) {
	require.Equal(t, TierOverdue, WorstTier(TierOverdue, TierOK))
	require.Equal(t, TierOverdue, WorstTier(TierOK, TierOverdue))
	require.Equal(t, TierExpiringSoon, WorstTier(TierExpiringSoon, TierIncoming))
	require.Equal(t, TierOK, WorstTier(TierOK, TierOK))
}

func TestRenewalStatusOverride(t *testing.T) {
	// IN_PROGRESS перекрывает любой вычисленный ярус
	require.Equal(t, TierInProgress,
		RenewalStatus(model.RenewalProgressInProgress, datePtr(2024, 5, 15), complianceToday))

	// COMPLETED даёт OK, пока дата не в прошлом
	require.Equal(t, TierOK,
		RenewalStatus(model.RenewalProgressCompleted, datePtr(2024, 6, 20), complianceToday))
	require.Equal(t, TierOverdue,
		RenewalStatus(model.RenewalProgressCompleted, datePtr(2024, 5, 15), complianceToday))

	// PENDING — обычная классификация по дате
	require.Equal(t, TierExpiringSoon,
		RenewalStatus(model.RenewalProgressPending, datePtr(2024, 6, 20), complianceToday))
	require.Equal(t, TierOverdue,
		RenewalStatus(model.RenewalProgressPending, nil, complianceToday))
}
