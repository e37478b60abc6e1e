package domain

// Значения по умолчанию
const (
	DefaultSlotDurationMinutes = 30
	DefaultLunchStart          = "13:00"
	DefaultLunchEnd            = "14:30"

	// DefaultServiceName услуга записи через бота, если прайс-лист пуст
	DefaultServiceName = "Corte de cabello"
)

// Ограничения бизнес-валидации
const (
	MinDurationMinutes          = 5
	MaxDurationMinutes          = 480 // 8 часов
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxServiceNameLength        = 200
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// SystemCancellationReason причина отмены записи клиентом через бота
const SystemCancellationReason = "Cancelada por el cliente vía WhatsApp"
