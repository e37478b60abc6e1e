package calendar

import "errors"

var (
	// ErrEventNotFound возвращается, когда событие не найдено у провайдера
	ErrEventNotFound = errors.New("calendar client: event not found")

	// ErrNoEvent возвращается при обновлении записи без привязанного события
	ErrNoEvent = errors.New("calendar client: appointment has no calendar event")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("calendar client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от провайдера
	ErrInvalidResponse = errors.New("calendar client: invalid response")
)
