package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error)
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, includeCancelled bool) ([]*domain.Appointment, error)
	ListByClientPhone(ctx context.Context, phone string) ([]*domain.Appointment, error)
	Update(ctx context.Context, appointment *domain.Appointment) error
	Delete(ctx context.Context, id int64) error
}

// LedgerRepository журнал ожидающих оплат
type LedgerRepository interface {
	VoidPendingEntry(ctx context.Context, appointmentID int64) error
}

// CalendarProvider внешний календарь
type CalendarProvider interface {
	UpdateEvent(ctx context.Context, appointment *domain.Appointment) error
}

// Validator проверка пересечений
type Validator interface {
	Validate(ctx context.Context, p overlap.Proposal) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
