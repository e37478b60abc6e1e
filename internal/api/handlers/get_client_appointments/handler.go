package get_client_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
)

const (
	msgInvalidPhone = "некорректный номер телефона"
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

// Handle GET /api/v1/clients/{phone}/appointments
// Номер принимается в любом формате, сравнение идет по нормализованному виду
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	rawPhone := mux.Vars(r)["phone"]

	result, err := h.service.ListByClientPhone(r.Context(), rawPhone)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /clients/{phone}/appointments - Invalid phone: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPhone)

		default:
			h.logger.Error("GET /clients/{phone}/appointments - Failed to get appointments: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /clients/{phone}/appointments - Appointments retrieved successfully: count=%d", len(result))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointmentList(result, h.loc))
}
