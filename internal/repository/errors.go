package repository

import "errors"

// Ошибки хранилища позиций и уведомлений
var (
	// ErrHoldingNotFound - открытой позиции с таким кодом нет
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrHoldingExists - позиция по этому коду уже открыта
	ErrHoldingExists = errors.New("holding already open")

	// ErrInvalidHolding - позиция без кода или с неположительной ценой входа
	ErrInvalidHolding = errors.New("invalid holding")

	// ErrNotificationNotFound - уведомление не найдено
	ErrNotificationNotFound = errors.New("notification not found")
)
