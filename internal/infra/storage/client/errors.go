package client

import "errors"

var (
	// ErrClientNotFound возвращается, когда клиент не найден
	ErrClientNotFound = errors.New("client.repository: client not found")

	// ErrDuplicatePhone возвращается при попытке создать второго клиента с тем же телефоном
	ErrDuplicatePhone = errors.New("client.repository: duplicate phone")

	ErrBuildQuery = errors.New("client.repository: failed to build query")
	ErrExecQuery  = errors.New("client.repository: failed to execute query")
	ErrScanRow    = errors.New("client.repository: failed to scan row")
)
