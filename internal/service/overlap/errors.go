package overlap

import "errors"

// Причины отказа. Проверяются в порядке объявления
var (
	// ErrPastDate начало записи строго раньше текущего момента
	ErrPastDate = errors.New("appointment start is in the past")

	// ErrLunchWindow интервал записи пересекает обеденное окно
	ErrLunchWindow = errors.New("appointment overlaps the lunch window")

	// ErrOutsideWorkingHours мастер не работает в этот день или интервал выходит за рабочие часы
	ErrOutsideWorkingHours = errors.New("appointment is outside employee working hours")

	// ErrDoubleBooking интервал пересекает другую неотмененную запись мастера
	ErrDoubleBooking = errors.New("employee already has an appointment at this time")
)

var (
	// ErrEmployeeNotFound возвращается, когда мастер не найден или неактивен
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidProposal возвращается при некорректных входных данных
	ErrInvalidProposal = errors.New("invalid appointment proposal")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("overlap validator: internal error")
)
