package create_appointment

import "errors"

var (
	// ErrEmployeeNotFound возвращается, когда мастер не найден или не активен
	ErrEmployeeNotFound = errors.New("create_appointment: employee not found")

	// ErrClientNotFound возвращается, когда клиент не найден
	ErrClientNotFound = errors.New("create_appointment: client not found")

	// ErrValidation оборачивает причину отказа валидатора пересечений
	// errors.Is работает и для ErrValidation, и для конкретной причины (overlap.ErrDoubleBooking и т.д.)
	ErrValidation = errors.New("create_appointment: validation failed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
