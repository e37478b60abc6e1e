package whatsapp_webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
)

const (
	msgVerificationFailed = "проверка вебхука не пройдена"
	msgInvalidSignature   = "некорректная подпись"

	signatureHeader = "X-Hub-Signature-256"
	maxPayloadBytes = 1 << 20
)

type Handler struct {
	engine      MessageHandler
	verifyToken string
	appSecret   string
	logger      Logger
}

// NewHandler создает обработчик вебхука. Пустой appSecret отключает проверку подписи
func NewHandler(engine MessageHandler, verifyToken, appSecret string, logger Logger) *Handler {
	return &Handler{
		engine:      engine,
		verifyToken: verifyToken,
		appSecret:   appSecret,
		logger:      logger,
	}
}

// HandleVerify GET /api/v1/webhooks/whatsapp
// Query params: hub.mode, hub.verify_token, hub.challenge
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" ||
		!hmac.Equal([]byte(token), []byte(h.verifyToken)) {
		h.logger.Warn("GET /webhooks/whatsapp - Verification failed: mode=%q", mode)
		handlers.RespondForbidden(w, msgVerificationFailed)
		return
	}

	h.logger.Info("GET /webhooks/whatsapp - Webhook verified")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

// Handle POST /api/v1/webhooks/whatsapp
// Отвечает 200 на любое корректно подписанное уведомление, иначе Cloud API будет повторять доставку.
// Ошибки обработки отдельных сообщений клиент уже получил в виде текста от бота
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/whatsapp - Failed to read body: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if h.appSecret != "" && !validSignature(body, r.Header.Get(signatureHeader), h.appSecret) {
		h.logger.Warn("POST /webhooks/whatsapp - Invalid signature")
		handlers.RespondError(w, http.StatusUnauthorized, msgInvalidSignature)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("POST /webhooks/whatsapp - Invalid payload: %v", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Обработка не должна обрываться, если Cloud API закроет соединение раньше
	ctx := context.WithoutCancel(r.Context())

	messages := payload.ToInboundMessages()
	for _, msg := range messages {
		if err := h.engine.HandleMessage(ctx, msg); err != nil {
			h.logger.Warn("POST /webhooks/whatsapp - Message not handled: message_id=%s, error=%v", msg.MessageID, err)
		}
	}

	if len(messages) > 0 {
		h.logger.Info("POST /webhooks/whatsapp - Processed %d messages", len(messages))
	}
	w.WriteHeader(http.StatusOK)
}

// validSignature проверяет HMAC-SHA256 тела по секрету приложения
func validSignature(body []byte, header, secret string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
