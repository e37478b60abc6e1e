package ledger

import "errors"

var (
	// ErrEntryNotFound возвращается, когда для записи нет ожидающей оплаты
	ErrEntryNotFound = errors.New("ledger.repository: pending entry not found")

	ErrBuildQuery = errors.New("ledger.repository: failed to build query")
	ErrExecQuery  = errors.New("ledger.repository: failed to execute query")
)
