package reschedule_appointment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidStart         = "новое время задается парой date (YYYY-MM-DD) и startTime (HH:MM)"
	msgInvalidInput         = "некорректные параметры изменения записи"
	msgNotFound             = "запись не найдена"
	msgImmutable            = "завершенную запись нельзя изменить"
	msgSlotNotAvailable     = "мастер уже занят в это время"
	msgPastDate             = "нельзя перенести запись на прошедшее время"
	msgLunchWindow          = "время записи пересекается с обедом"
	msgOutsideHours         = "время записи вне рабочих часов мастера"
)

type Handler struct {
	service AppointmentService
	loc     *time.Location
	logger  Logger
}

func NewHandler(service AppointmentService, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(h.loc)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id} - Invalid start: appointment_id=%d, error=%v", appointmentID, err)
		handlers.RespondBadRequest(w, msgInvalidStart)
		return
	}

	result, err := h.service.Reschedule(r.Context(), appointmentID, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id} - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrImmutableState):
			h.logger.Warn("PATCH /appointments/{id} - Appointment is completed: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgImmutable)

		case errors.Is(err, overlap.ErrDoubleBooking):
			h.logger.Warn("PATCH /appointments/{id} - Slot not available: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, overlap.ErrPastDate):
			h.logger.Warn("PATCH /appointments/{id} - Start in the past: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, overlap.ErrLunchWindow):
			h.logger.Warn("PATCH /appointments/{id} - Overlaps lunch: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgLunchWindow)

		case errors.Is(err, overlap.ErrOutsideWorkingHours):
			h.logger.Warn("PATCH /appointments/{id} - Outside working hours: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id} - Invalid input: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /appointments/{id} - Failed to reschedule: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id} - Appointment updated successfully: appointment_id=%d", appointmentID)
	handlers.RespondJSON(w, http.StatusOK, models.NewOperationResponse(result.Appointment, result.SideEffects, h.loc))
}
