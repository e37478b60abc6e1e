package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
)

// Request модель запроса на создание записи
type Request struct {
	ClientID        int64
	EmployeeID      int64
	ServiceName     string
	StartAt         time.Time
	DurationMinutes int // 0 = длительность услуги из прайс-листа
	Origin          domain.Origin
	Notes           *string
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment *domain.Appointment

	// Итоги побочных действий; запись создана независимо от них
	CalendarSync besteffort.Result
	LedgerEntry  besteffort.Result
}
