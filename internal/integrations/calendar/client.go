package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Client клиент внешнего календаря
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	loc        *time.Location
	log        Logger
}

// NewClient создает новый экземпляр клиента календаря
func NewClient(baseURL, apiKey string, timeout time.Duration, loc *time.Location, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		loc: loc,
		log: log,
	}
}

// CreateEvent создает событие для записи и возвращает его идентификатор
func (c *Client) CreateEvent(ctx context.Context, appointment *domain.Appointment) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/events", eventFromAppointment(appointment))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	default:
		return "", unexpectedStatus(resp)
	}

	var created CreateEventResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: empty event id", ErrInvalidResponse)
	}

	c.log.Info("Calendar event %s created for appointment_id=%d", created.ID, appointment.ID)
	return created.ID, nil
}

// UpdateEvent синхронизирует время, мастера и статус записи с событием
func (c *Client) UpdateEvent(ctx context.Context, appointment *domain.Appointment) error {
	if appointment.CalendarEventID == nil || *appointment.CalendarEventID == "" {
		return ErrNoEvent
	}

	path := "/events/" + url.PathEscape(*appointment.CalendarEventID)
	resp, err := c.do(ctx, http.MethodPut, path, eventFromAppointment(appointment))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrEventNotFound
	default:
		return unexpectedStatus(resp)
	}
}

// ListBlockedRanges получает занятые интервалы мастера на дату
func (c *Client) ListBlockedRanges(ctx context.Context, employeeID int64, date time.Time) ([]domain.Interval, error) {
	path := fmt.Sprintf("/employees/%d/blocks?date=%s", employeeID, date.In(c.loc).Format(domain.DateFormat))

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// У мастера нет календаря
		return []domain.Interval{}, nil
	default:
		return nil, unexpectedStatus(resp)
	}

	var blocks []BlockedRange
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	intervals := make([]domain.Interval, 0, len(blocks))
	for _, b := range blocks {
		if !b.Start.Before(b.End) {
			c.log.Warn("Calendar returned empty block %s-%s for employee_id=%d, skipping", b.Start, b.End, employeeID)
			continue
		}
		intervals = append(intervals, domain.Interval{Start: b.Start.In(c.loc), End: b.End.In(c.loc)})
	}

	return intervals, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}

	return resp, nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrInvalidResponse, resp.StatusCode, errResp.Message)
	}
	return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
}

func eventFromAppointment(a *domain.Appointment) Event {
	return Event{
		EmployeeID:    a.EmployeeID,
		AppointmentID: a.ID,
		TrackingCode:  a.TrackingCode,
		Title:         fmt.Sprintf("%s (%s)", a.ServiceName, a.TrackingCode),
		Status:        string(a.Status),
		Start:         a.StartAt,
		End:           a.EndAt(),
	}
}
