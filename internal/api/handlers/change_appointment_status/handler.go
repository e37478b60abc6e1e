package change_appointment_status

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
	msgInvalidInput         = "некорректный статус или причина отмены"
	msgNotFound             = "запись не найдена"
	msgImmutable            = "завершенную запись нельзя изменить"
	msgIllegalTransition    = "недопустимая смена статуса"
	msgMissingReason        = "для отмены нужна причина"
	msgSlotNotAvailable     = "время записи уже занято другой записью"
	msgValidation           = "запись нельзя восстановить в это время"
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

// Handle PATCH /api/v1/appointments/{appointmentId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	appointmentID, err := strconv.ParseInt(vars["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req ChangeStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.ChangeStatus(r.Context(), appointmentID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/status - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrImmutableState):
			h.logger.Warn("PATCH /appointments/{id}/status - Appointment is completed: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgImmutable)

		case errors.Is(err, appointments.ErrIllegalTransition):
			h.logger.Warn("PATCH /appointments/{id}/status - Illegal transition: appointment_id=%d, status=%s",
				appointmentID, req.Status)
			handlers.RespondConflict(w, msgIllegalTransition)

		case errors.Is(err, appointments.ErrMissingReason):
			h.logger.Warn("PATCH /appointments/{id}/status - Missing reason: appointment_id=%d", appointmentID)
			handlers.RespondBadRequest(w, msgMissingReason)

		case errors.Is(err, overlap.ErrDoubleBooking):
			h.logger.Warn("PATCH /appointments/{id}/status - Slot taken: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, appointments.ErrValidation):
			h.logger.Warn("PATCH /appointments/{id}/status - Validation failed: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondBadRequest(w, msgValidation)

		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/status - Invalid input: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /appointments/{id}/status - Failed to change status: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/status - Status changed successfully: appointment_id=%d, status=%s",
		appointmentID, result.Appointment.Status)
	handlers.RespondJSON(w, http.StatusOK, models.NewOperationResponse(result.Appointment, result.SideEffects, h.loc))
}
