package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/phone"
)

const messagingProduct = "whatsapp"

// Client клиент WhatsApp Cloud API (исходящие сообщения и отметки о прочтении)
type Client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
	log           Logger
}

// NewClient создает новый экземпляр клиента WhatsApp
func NewClient(baseURL, phoneNumberID, accessToken string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendText отправляет текстовое сообщение на номер в формате E.164
func (c *Client) SendText(ctx context.Context, to, body string) error {
	msg := textMessage{
		MessagingProduct: messagingProduct,
		RecipientType:    "individual",
		To:               phone.Digits(to),
		Type:             "text",
		Text:             textPayload{Body: body},
	}

	if err := c.post(ctx, msg); err != nil {
		return fmt.Errorf("SendText to=%s: %w", to, err)
	}
	return nil
}

// MarkRead отмечает входящее сообщение прочитанным
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}

	receipt := readReceipt{
		MessagingProduct: messagingProduct,
		Status:           "read",
		MessageID:        messageID,
	}

	if err := c.post(ctx, receipt); err != nil {
		return fmt.Errorf("MarkRead message_id=%s: %w", messageID, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload interface{}) error {
	if c.phoneNumberID == "" || c.accessToken == "" {
		return ErrNotConfigured
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		c.log.Error("WhatsApp API error: status=%d code=%d message=%s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
}
