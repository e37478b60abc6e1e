package overlap

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
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, includeCancelled bool) ([]*domain.Appointment, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
