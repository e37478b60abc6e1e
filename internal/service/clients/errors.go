package clients

import "errors"

var (
	// ErrInvalidPhone возвращается, когда номер не удалось нормализовать
	ErrInvalidPhone = errors.New("clients: invalid phone")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("clients: internal error")
)
