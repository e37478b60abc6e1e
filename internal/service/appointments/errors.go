package appointments

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrImmutableState возвращается при попытке изменить завершенную запись
	ErrImmutableState = errors.New("completed appointment cannot be changed")

	// ErrIllegalTransition возвращается при недопустимом переходе статуса
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrMissingReason возвращается при отмене без причины
	ErrMissingReason = errors.New("cancellation reason is required")

	// ErrCannotDeleteCompleted возвращается при удалении завершенной записи
	ErrCannotDeleteCompleted = errors.New("completed appointment cannot be deleted")

	// ErrNotAvailable оборачивает ErrDoubleBooking при переносе и возобновлении
	ErrNotAvailable = errors.New("requested time is not available")

	// ErrValidation оборачивает прочие причины отказа валидатора (прошедшая дата, обед, рабочие часы)
	ErrValidation = errors.New("appointment validation failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// IsValidationError true для всех ошибок бизнес-правил (их можно показать пользователю)
func IsValidationError(err error) bool {
	return errors.Is(err, ErrImmutableState) ||
		errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrMissingReason) ||
		errors.Is(err, ErrCannotDeleteCompleted) ||
		errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrValidation)
}
