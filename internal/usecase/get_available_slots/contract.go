package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// EmployeeRepository справочник мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListByEmployee получает записи мастера с началом в [from, to)
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, includeCancelled bool) ([]*domain.Appointment, error)
}

// CalendarProvider занятые интервалы из внешнего календаря
type CalendarProvider interface {
	ListBlockedRanges(ctx context.Context, employeeID int64, date time.Time) ([]domain.Interval, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
