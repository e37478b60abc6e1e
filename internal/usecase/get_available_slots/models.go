package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	EmployeeID      int64     // ID мастера
	Date            time.Time // Дата (учитывается только день в часовом поясе заведения)
	DurationMinutes int       // Длительность услуги, она же шаг сетки
}

// Response модель ответа со списком доступных слотов
type Response struct {
	EmployeeID      int64
	Date            time.Time
	DurationMinutes int
	Slots           []types.TimeString // Время начала слотов HH:MM по возрастанию
}
