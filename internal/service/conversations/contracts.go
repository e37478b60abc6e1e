package conversations

import (
	"context"
	"time"
)

// ConversationRepository интерфейс репозитория диалогов
type ConversationRepository interface {
	DeactivateIdle(ctx context.Context, cutoff time.Time) (int64, error)
}

// MetricsRecorder счетчик истекших диалогов (может быть nil)
type MetricsRecorder interface {
	AddConversationsExpired(n int64)
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
	Error(format string, v ...interface{})
}
