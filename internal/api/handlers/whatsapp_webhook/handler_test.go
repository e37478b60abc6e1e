package whatsapp_webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-BarberService/internal/bot"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
)

type engineMock struct{ mock.Mock }

func (m *engineMock) HandleMessage(ctx context.Context, msg bot.InboundMessage) error {
	return m.Called(ctx, msg).Error(0)
}

const textPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"profile": {"name": "Ana"}, "wa_id": "573001234567"}],
        "messages": [
          {"from": "573001234567", "id": "wamid.1", "timestamp": "1", "type": "text", "text": {"body": "hola"}},
          {"from": "573001234567", "id": "wamid.2", "timestamp": "2", "type": "interactive",
           "interactive": {"type": "button_reply", "button_reply": {"id": "yes", "title": "Sí"}}}
        ]
      }
    }]
  }]
}`

const statusPayload = `{
  "object": "whatsapp_business_account",
  "entry": [{"id": "1", "changes": [{"field": "messages", "value": {
    "messaging_product": "whatsapp",
    "statuses": [{"id": "wamid.9", "status": "delivered"}]
  }}]}]
}`

func sign(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestHandleVerify(t *testing.T) {
	h := NewHandler(&engineMock{}, "secret-token", "", logger.NewNop())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid", "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=42", http.StatusOK, "42"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=42", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/whatsapp?"+tt.query, nil)
			rec := httptest.NewRecorder()

			h.HandleVerify(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandle_DispatchesMessagesInOrder(t *testing.T) {
	engine := &engineMock{}
	var calls []bot.InboundMessage
	engine.On("HandleMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { calls = append(calls, args.Get(1).(bot.InboundMessage)) }).
		Return(nil)

	h := NewHandler(engine, "token", "", logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(textPayload))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []bot.InboundMessage{
		{Phone: "+573001234567", MessageID: "wamid.1", Text: "hola"},
		{Phone: "+573001234567", MessageID: "wamid.2", Text: "Sí"},
	}, calls)
}

func TestHandle_EngineErrorStillAcknowledged(t *testing.T) {
	engine := &engineMock{}
	engine.On("HandleMessage", mock.Anything, mock.Anything).Return(errors.New("boom"))

	h := NewHandler(engine, "token", "", logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(textPayload))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	engine.AssertNumberOfCalls(t, "HandleMessage", 2)
}

func TestHandle_StatusUpdatesIgnored(t *testing.T) {
	engine := &engineMock{}
	h := NewHandler(engine, "token", "", logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(statusPayload))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	engine.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
}

func TestHandle_MalformedPayloadAcknowledged(t *testing.T) {
	engine := &engineMock{}
	h := NewHandler(engine, "token", "", logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	engine.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
}

func TestHandle_Signature(t *testing.T) {
	const secret = "app-secret"

	t.Run("valid signature", func(t *testing.T) {
		engine := &engineMock{}
		engine.On("HandleMessage", mock.Anything, mock.Anything).Return(nil)
		h := NewHandler(engine, "token", secret, logger.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(textPayload))
		req.Header.Set(signatureHeader, sign(textPayload, secret))
		rec := httptest.NewRecorder()

		h.Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		engine.AssertNumberOfCalls(t, "HandleMessage", 2)
	})

	t.Run("invalid signature", func(t *testing.T) {
		engine := &engineMock{}
		h := NewHandler(engine, "token", secret, logger.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(textPayload))
		req.Header.Set(signatureHeader, sign(textPayload, "other"))
		rec := httptest.NewRecorder()

		h.Handle(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		engine.AssertNotCalled(t, "HandleMessage", mock.Anything, mock.Anything)
	})
}
