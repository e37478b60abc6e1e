package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
)

const (
	msgInvalidEmployeeID = "некорректный ID мастера"
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration   = "некорректная длительность услуги"
	msgEmployeeNotFound  = "мастер не найден"
)

type Handler struct {
	useCase         GetAvailableSlotsUseCase
	loc             *time.Location
	defaultDuration int
	logger          Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, loc *time.Location, defaultDuration int, logger Logger) *Handler {
	return &Handler{
		useCase:         useCase,
		loc:             loc,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// Handle GET /api/v1/employees/{employeeId}/available-slots
// Query params: date (required, YYYY-MM-DD), duration (опционально, минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// Извлекаем employeeId из URL
	employeeID, err := strconv.ParseInt(vars["employeeId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/available-slots - Invalid employee ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEmployeeID)
		return
	}

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /employees/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(employeeID, dateStr, r.URL.Query().Get("duration"), h.defaultDuration, h.loc)
	if err != nil {
		h.logger.Warn("GET /employees/{id}/available-slots - Invalid query: %v", err)
		if errors.Is(err, errInvalidDuration) {
			handlers.RespondBadRequest(w, msgInvalidDuration)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrEmployeeNotFound):
			h.logger.Warn("GET /employees/{id}/available-slots - Employee not found: employee_id=%d", employeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /employees/{id}/available-slots - Invalid input: employee_id=%d, error=%v", employeeID, err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		default:
			h.logger.Error("GET /employees/{id}/available-slots - Failed to get slots: employee_id=%d, date=%s, error=%v",
				employeeID, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /employees/{id}/available-slots - Slots retrieved successfully: employee_id=%d, date=%s, slots_count=%d",
		employeeID, dateStr, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
