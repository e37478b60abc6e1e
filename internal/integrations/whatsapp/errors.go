package whatsapp

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("whatsapp client: internal error")

	// ErrInvalidResponse возвращается при отказе Cloud API
	ErrInvalidResponse = errors.New("whatsapp client: invalid response")

	// ErrNotConfigured возвращается, когда не заданы phone_number_id или access_token
	ErrNotConfigured = errors.New("whatsapp client: not configured")
)
