package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// RescheduleRequest запрос на перенос/изменение записи
// Незаполненные поля берутся из текущей записи
type RescheduleRequest struct {
	StartAt         *time.Time `json:"start,omitempty"`
	EmployeeID      *int64     `json:"employeeId,omitempty"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	ServiceName     *string    `json:"serviceName,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// IsEmpty true, если запрос ничего не меняет
func (r *RescheduleRequest) IsEmpty() bool {
	return r.StartAt == nil && r.EmployeeID == nil && r.DurationMinutes == nil &&
		r.ServiceName == nil && r.Notes == nil
}

// ChangeStatusRequest запрос на смену статуса
type ChangeStatusRequest struct {
	Status             string  `json:"status"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID                 int64     `json:"id"`
	TrackingCode       string    `json:"trackingCode"`
	ClientID           int64     `json:"clientId"`
	EmployeeID         int64     `json:"employeeId"`
	ServiceName        string    `json:"serviceName"`
	StartAt            time.Time `json:"start"`
	EndAt              time.Time `json:"end"`
	Date               string    `json:"date"`      // "2026-03-02"
	StartTime          string    `json:"startTime"` // "10:00"
	DurationMinutes    int       `json:"durationMinutes"`
	Origin             string    `json:"origin"`
	Status             string    `json:"status"`
	CancellationReason *string   `json:"cancellationReason,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CalendarEventID    *string   `json:"calendarEventId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// SideEffectResponse итог побочного действия (календарь, журнал оплат)
type SideEffectResponse struct {
	Operation string `json:"operation"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// OperationResponse запись после изменения и итоги побочных действий
type OperationResponse struct {
	Appointment *AppointmentResponse `json:"appointment,omitempty"`
	SideEffects []SideEffectResponse `json:"sideEffects"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
// Дата и время выводятся в часовом поясе loc (часовой пояс заведения)
func FromDomainAppointment(a *domain.Appointment, loc *time.Location) *AppointmentResponse {
	if a == nil {
		return nil
	}

	start := a.StartAt.In(loc)
	return &AppointmentResponse{
		ID:                 a.ID,
		TrackingCode:       a.TrackingCode,
		ClientID:           a.ClientID,
		EmployeeID:         a.EmployeeID,
		ServiceName:        a.ServiceName,
		StartAt:            start,
		EndAt:              a.EndAt().In(loc),
		Date:               start.Format(domain.DateFormat),
		StartTime:          start.Format(domain.TimeFormat),
		DurationMinutes:    a.DurationMinutes,
		Origin:             string(a.Origin),
		Status:             string(a.Status),
		CancellationReason: a.CancellationReason,
		Notes:              a.Notes,
		CalendarEventID:    a.CalendarEventID,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment, loc *time.Location) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if r := FromDomainAppointment(a, loc); r != nil {
			resp.Appointments = append(resp.Appointments, *r)
		}
	}

	return resp
}

// FromSideEffect конвертирует итог побочного действия
func FromSideEffect(operation string, err error) SideEffectResponse {
	resp := SideEffectResponse{Operation: operation, OK: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// NewOperationResponse ответ на изменение записи вместе с итогами побочных действий
func NewOperationResponse(a *domain.Appointment, effects []besteffort.Result, loc *time.Location) *OperationResponse {
	resp := &OperationResponse{
		Appointment: FromDomainAppointment(a, loc),
		SideEffects: make([]SideEffectResponse, 0, len(effects)),
	}
	for _, e := range effects {
		resp.SideEffects = append(resp.SideEffects, FromSideEffect(e.Operation, e.Err))
	}
	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
