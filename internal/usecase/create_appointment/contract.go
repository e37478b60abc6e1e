package create_appointment

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	SetCalendarEventID(ctx context.Context, id int64, eventID string) error
}

// EmployeeRepository справочник мастеров
type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// ClientRepository справочник клиентов
type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
}

// ServiceCatalog прайс-лист (цена услуги для ожидающей оплаты)
type ServiceCatalog interface {
	ListActive(ctx context.Context) ([]*domain.Service, error)
}

// LedgerRepository журнал ожидающих оплат
type LedgerRepository interface {
	CreatePendingEntry(ctx context.Context, entry *domain.LedgerEntry) error
}

// CalendarProvider внешний календарь
type CalendarProvider interface {
	CreateEvent(ctx context.Context, appointment *domain.Appointment) (string, error)
}

// Validator проверка пересечений
type Validator interface {
	Validate(ctx context.Context, p overlap.Proposal) error
}

// TrackingCodeGenerator генератор кодов отслеживания
type TrackingCodeGenerator interface {
	Generate() string
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчик созданных записей (может быть nil)
type MetricsRecorder interface {
	IncAppointmentCreated(origin string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
