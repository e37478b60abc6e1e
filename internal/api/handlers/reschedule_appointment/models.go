package reschedule_appointment

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

var errIncompleteStart = errors.New("date and startTime must be given together")

// RescheduleAppointmentRequest HTTP request model
// Все поля опциональны; новое время задается парой date + startTime
type RescheduleAppointmentRequest struct {
	Date            *string `json:"date,omitempty"`      // "2026-03-02"
	StartTime       *string `json:"startTime,omitempty"` // "10:00"
	EmployeeID      *int64  `json:"employeeId,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	ServiceName     *string `json:"serviceName,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RescheduleAppointmentRequest) ToServiceRequest(loc *time.Location) (*models.RescheduleRequest, error) {
	req := &models.RescheduleRequest{
		EmployeeID:      r.EmployeeID,
		DurationMinutes: r.DurationMinutes,
		ServiceName:     r.ServiceName,
		Notes:           r.Notes,
	}

	if (r.Date == nil) != (r.StartTime == nil) {
		return nil, errIncompleteStart
	}
	if r.Date != nil {
		date, err := time.ParseInLocation(domain.DateFormat, *r.Date, loc)
		if err != nil {
			return nil, err
		}
		startTime, err := types.NewTimeStringFromString(*r.StartTime)
		if err != nil {
			return nil, err
		}
		startAt := startTime.On(date, loc)
		req.StartAt = &startAt
	}

	return req, nil
}
