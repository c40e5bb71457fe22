package service

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	// ErrTransient — конфликт конкурентных транзакций, не разрешившийся за
	// отведённые попытки. Вызывающая сторона может повторить операцию.
	ErrTransient = errors.New("transient store conflict")
)
