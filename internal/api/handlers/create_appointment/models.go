package create_appointment

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

var (
	errInvalidDate    = errors.New("invalid appointment date")
	errInvalidTime    = errors.New("invalid start time")
	errMissingClient  = errors.New("client id or client phone is required")
	errMissingService = errors.New("service name is required")
)

// CreateAppointmentRequest HTTP request model
// Клиент задается либо clientId, либо телефоном (тогда он будет найден или зарегистрирован)
type CreateAppointmentRequest struct {
	ClientID        int64   `json:"clientId,omitempty"`
	ClientPhone     string  `json:"clientPhone,omitempty"`
	ClientName      string  `json:"clientName,omitempty"`
	EmployeeID      int64   `json:"employeeId"`
	ServiceName     string  `json:"serviceName"`
	Date            string  `json:"date"`      // "2026-03-02"
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// Validate проверяет обязательные поля, не требующие обращения к хранилищу
func (r *CreateAppointmentRequest) Validate() error {
	if r.ClientID <= 0 && strings.TrimSpace(r.ClientPhone) == "" {
		return errMissingClient
	}
	if strings.TrimSpace(r.ServiceName) == "" {
		return errMissingService
	}
	return nil
}

// StartAt момент начала в часовом поясе заведения
func (r *CreateAppointmentRequest) StartAt(loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(domain.DateFormat, r.Date, loc)
	if err != nil {
		return time.Time{}, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return time.Time{}, errInvalidTime
	}

	return startTime.On(date, loc), nil
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Записи, созданные через API, всегда ручные
func (r *CreateAppointmentRequest) ToUseCaseRequest(clientID int64, startAt time.Time) *createAppointment.Request {
	return &createAppointment.Request{
		ClientID:        clientID,
		EmployeeID:      r.EmployeeID,
		ServiceName:     strings.TrimSpace(r.ServiceName),
		StartAt:         startAt,
		DurationMinutes: r.DurationMinutes,
		Origin:          domain.OriginManual,
		Notes:           r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response, loc *time.Location) *models.OperationResponse {
	return models.NewOperationResponse(resp.Appointment, []besteffort.Result{resp.CalendarSync, resp.LedgerEntry}, loc)
}
