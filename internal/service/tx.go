package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const txMaxAttempts = 3

// runInTx выполняет fn в одной транзакции: либо все записи фиксируются,
// либо ни одной. Сериализационные конфликты и дедлоки повторяются до
// txMaxAttempts, дальше наружу уходит ErrTransient. Внутри попытки все
// чтения (FOR UPDATE) должны идти до первой записи.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil || !retryableTxError(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// uniqueViolation распознаёт срабатывание частичного уникального индекса —
// страховки инвариантов движка на уровне базы.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
