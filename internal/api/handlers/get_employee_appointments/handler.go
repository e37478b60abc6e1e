package get_employee_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
)

const (
	msgInvalidEmployeeID = "некорректный ID мастера"
	msgMissingFrom       = "параметр from обязателен"
	msgInvalidParams     = "некорректные параметры запроса"
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

// Handle GET /api/v1/employees/{employeeId}/appointments
// Query params: from (required, YYYY-MM-DD), to (опционально, включительно)
// Отмененные записи тоже возвращаются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	employeeID, err := strconv.ParseInt(vars["employeeId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/appointments - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	fromStr := r.URL.Query().Get("from")
	if fromStr == "" {
		h.logger.Warn("GET /employees/{id}/appointments - Missing from")
		handlers.RespondBadRequest(w, msgMissingFrom)
		return
	}

	from, to, err := ParsePeriod(fromStr, r.URL.Query().Get("to"), h.loc)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/appointments - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.service.ListByEmployee(r.Context(), employeeID, from, to)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /employees/{id}/appointments - Invalid input: employee_id=%d, error=%v", employeeID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /employees/{id}/appointments - Failed to get appointments: employee_id=%d, error=%v",
				employeeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /employees/{id}/appointments - Appointments retrieved successfully: employee_id=%d, count=%d",
		employeeID, len(result))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointmentList(result, h.loc))
}
