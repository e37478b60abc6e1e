package domain

import "time"

// LedgerStatus статус записи в журнале оплат
type LedgerStatus string

const (
	LedgerPending LedgerStatus = "PENDING"
	LedgerVoid    LedgerStatus = "VOID"
	LedgerPaid    LedgerStatus = "PAID"
)

// LedgerEntry ожидающая оплата, привязанная к записи 1:1
type LedgerEntry struct {
	ID            int64
	AppointmentID int64
	Amount        float64
	Status        LedgerStatus
	Description   string
	CreatedAt     time.Time
}
