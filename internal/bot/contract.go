package bot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BarberService/pkg/locker"
)

// ConversationRepository хранилище диалогов
type ConversationRepository interface {
	GetActiveByPhone(ctx context.Context, phone string) (*domain.Conversation, error)
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	Save(ctx context.Context, conversation *domain.Conversation) error
}

// EmployeeDirectory справочник мастеров
type EmployeeDirectory interface {
	ListActive(ctx context.Context) ([]*domain.Employee, error)
}

// ServiceCatalog прайс-лист
type ServiceCatalog interface {
	ListActive(ctx context.Context) ([]*domain.Service, error)
}

// ClientDirectory справочник клиентов
type ClientDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
}

// ClientResolver поиск или создание клиента при записи
type ClientResolver interface {
	ResolveForBooking(ctx context.Context, rawPhone, name string) (*domain.Client, error)
}

// SlotCalculator расчет свободных слотов
type SlotCalculator interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// AppointmentCreator создание записи
type AppointmentCreator interface {
	Execute(ctx context.Context, req *create_appointment.Request) (*create_appointment.Response, error)
}

// AppointmentService поиск и отмена записи по коду
type AppointmentService interface {
	GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error)
	CancelByTrackingCode(ctx context.Context, code string) (*appointments.Result, error)
}

// Messenger транспорт исходящих сообщений
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	MarkRead(ctx context.Context, messageID string) error
}

// Locker блокировка по номеру телефона
type Locker interface {
	Lock(ctx context.Context, key string) (locker.UnlockFunc, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчик обработанных сообщений (может быть nil)
type MetricsRecorder interface {
	IncBotMessage(state, outcome string)
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

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
