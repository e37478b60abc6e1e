package whatsapp_webhook

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/bot"
)

// MessageHandler обработчик входящих сообщений (диалоговый движок)
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg bot.InboundMessage) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
