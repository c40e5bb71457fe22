package service

import (
	"time"

	"fleet-service/internal/model"
)

// Политика срочности продлений и обслуживания. Чистые функции без доступа
// к хранилищу; "сегодня" передаётся параметром.

type ComplianceTier string

const (
	TierOverdue      ComplianceTier = "OVERDUE"
	TierExpiringSoon ComplianceTier = "EXPIRING_SOON"
	TierIncoming     ComplianceTier = "INCOMING"
	TierOK           ComplianceTier = "OK"
	// TierInProgress — не вычисляемый ярус, а перекрытие: продление уже в
	// работе, дата истечения на статус не влияет.
	TierInProgress ComplianceTier = "IN_PROGRESS"
)

const (
	expiringSoonDays = 30
	incomingDays     = 60

	expiringSoonKM = 2000
	incomingKM     = 5000
)

var tierRank = map[ComplianceTier]int{
	TierOverdue:      0,
	TierExpiringSoon: 1,
	TierIncoming:     2,
	TierOK:           3,
}

// WorstTier возвращает более срочный из двух ярусов.
func WorstTier(a, b ComplianceTier) ComplianceTier {
	if tierRank[a] <= tierRank[b] {
		return a
	}
	return b
}

// ClassifyExpiry классифицирует дату истечения налога или страховки.
// Отсутствующая дата считается хуже любой известной — OVERDUE (fail-closed):
// грузовик без даты страховки нельзя молча считать чистым.
func ClassifyExpiry(expiry *time.Time, today time.Time) ComplianceTier {
	if expiry == nil {
		return TierOverdue
	}
	days := daysUntil(*expiry, today)
	switch {
	case days < 0:
		return TierOverdue
	case days <= expiringSoonDays:
		return TierExpiringSoon
	case days <= incomingDays:
		return TierIncoming
	default:
		return TierOK
	}
}

// ClassifyServiceDue классифицирует срок следующего обслуживания по дате
// и/или остатку пробега. Грузовик, которому график никогда не задавали,
// ещё не просрочен — OK (fail-open). Асимметрия с ClassifyExpiry
// намеренная: её разворот молча меняет алертинг по всему парку.
// При наличии обоих сигналов побеждает более срочный ярус.
func ClassifyServiceDue(nextDate *time.Time, remainingKM *int64, today time.Time) ComplianceTier {
	tier := TierOK
	if nextDate != nil {
		days := daysUntil(*nextDate, today)
		switch {
		case days < 0:
			tier = WorstTier(tier, TierOverdue)
		case days <= expiringSoonDays:
			tier = WorstTier(tier, TierExpiringSoon)
		case days <= incomingDays:
			tier = WorstTier(tier, TierIncoming)
		}
	}
	if remainingKM != nil {
		km := *remainingKM
		switch {
		case km < 0:
			tier = WorstTier(tier, TierOverdue)
		case km <= expiringSoonKM:
			tier = WorstTier(tier, TierExpiringSoon)
		case km <= incomingKM:
			tier = WorstTier(tier, TierIncoming)
		}
	}
	return tier
}

// RenewalStatus накладывает маркер хода продления на вычисленный ярус:
// IN_PROGRESS перекрывает ярус целиком; COMPLETED даёт OK, пока записанная
// дата истечения сама не окажется в прошлом.
func RenewalStatus(progress model.RenewalProgress, expiry *time.Time, today time.Time) ComplianceTier {
	switch progress {
	case model.RenewalProgressInProgress:
		return TierInProgress
	case model.RenewalProgressCompleted:
		if expiry != nil && daysUntil(*expiry, today) < 0 {
			return ClassifyExpiry(expiry, today)
		}
		return TierOK
	default:
		return ClassifyExpiry(expiry, today)
	}
}

// daysUntil считает календарные дни между датами, время суток
// игнорируется. 0 — истекает сегодня.
func daysUntil(expiry, today time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(t).Hours() / 24)
}
