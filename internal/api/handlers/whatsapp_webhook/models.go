package whatsapp_webhook

import (
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/bot"
)

// WebhookPayload уведомление Cloud API. Разбираются только нужные поля
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue содержит либо входящие сообщения, либо статусы доставки исходящих
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages,omitempty"`
}

type WebhookMessage struct {
	From        string              `json:"from"` // международный формат без "+"
	ID          string              `json:"id"`
	Timestamp   string              `json:"timestamp"`
	Type        string              `json:"type"`
	Text        *WebhookText        `json:"text,omitempty"`
	Button      *WebhookButton      `json:"button,omitempty"`
	Interactive *WebhookInteractive `json:"interactive,omitempty"`
}

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookButton struct {
	Text string `json:"text"`
}

type WebhookInteractive struct {
	Type        string        `json:"type"`
	ButtonReply *WebhookReply `json:"button_reply,omitempty"`
	ListReply   *WebhookReply `json:"list_reply,omitempty"`
}

type WebhookReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// body текст, который увидит движок. Для медиа и прочих типов пустая строка
func (m WebhookMessage) body() string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Button != nil:
		return m.Button.Text
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.Title
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.Title
	default:
		return ""
	}
}

// ToInboundMessages извлекает входящие сообщения в порядке следования
// Уведомления о статусах доставки сообщений не содержат и пропускаются
func (p *WebhookPayload) ToInboundMessages() []bot.InboundMessage {
	var result []bot.InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.From == "" {
					continue
				}
				from := m.From
				if !strings.HasPrefix(from, "+") {
					from = "+" + from
				}
				result = append(result, bot.InboundMessage{
					Phone:     from,
					MessageID: m.ID,
					Text:      m.body(),
				})
			}
		}
	}
	return result
}
