package create_appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/api/handlers"
	"github.com/m04kA/SMC-BarberService/internal/service/clients"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	createAppointment "github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime        = "некорректный формат времени начала, ожидается HH:MM"
	msgMissingClient      = "нужно указать clientId или clientPhone"
	msgMissingService     = "название услуги обязательно"
	msgInvalidPhone       = "некорректный номер телефона клиента"
	msgInvalidInput       = "некорректные параметры записи"
	msgEmployeeNotFound   = "мастер не найден"
	msgClientNotFound     = "клиент не найден"
	msgSlotNotAvailable   = "мастер уже занят в это время"
	msgPastDate           = "нельзя записаться на прошедшее время"
	msgLunchWindow        = "время записи пересекается с обедом"
	msgOutsideHours       = "время записи вне рабочих часов мастера"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	clients ClientResolver
	loc     *time.Location
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, clients ClientResolver, loc *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		clients: clients,
		loc:     loc,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.Warn("POST /appointments - Invalid request: %v", err)
		if errors.Is(err, errMissingClient) {
			handlers.RespondBadRequest(w, msgMissingClient)
		} else {
			handlers.RespondBadRequest(w, msgMissingService)
		}
		return
	}

	startAt, err := req.StartAt(h.loc)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse start: %v", err)
		if errors.Is(err, errInvalidTime) {
			handlers.RespondBadRequest(w, msgInvalidTime)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	clientID := req.ClientID
	if clientID <= 0 {
		client, err := h.clients.ResolveForBooking(r.Context(), req.ClientPhone, req.ClientName)
		if err != nil {
			if errors.Is(err, clients.ErrInvalidPhone) {
				h.logger.Warn("POST /appointments - Invalid client phone: %v", err)
				handlers.RespondBadRequest(w, msgInvalidPhone)
				return
			}
			h.logger.Error("POST /appointments - Failed to resolve client: error=%v", err)
			handlers.RespondInternalError(w)
			return
		}
		clientID = client.ID
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(clientID, startAt))
	if err != nil {
		switch {
		case errors.Is(err, overlap.ErrDoubleBooking):
			h.logger.Warn("POST /appointments - Slot not available: employee_id=%d, start=%s", req.EmployeeID, startAt)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, overlap.ErrPastDate):
			h.logger.Warn("POST /appointments - Start in the past: employee_id=%d, start=%s", req.EmployeeID, startAt)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, overlap.ErrLunchWindow):
			h.logger.Warn("POST /appointments - Overlaps lunch: employee_id=%d, start=%s", req.EmployeeID, startAt)
			handlers.RespondBadRequest(w, msgLunchWindow)

		case errors.Is(err, overlap.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: employee_id=%d, start=%s", req.EmployeeID, startAt)
			handlers.RespondBadRequest(w, msgOutsideHours)

		case errors.Is(err, createAppointment.ErrEmployeeNotFound):
			h.logger.Warn("POST /appointments - Employee not found: employee_id=%d", req.EmployeeID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, createAppointment.ErrClientNotFound):
			h.logger.Warn("POST /appointments - Client not found: client_id=%d", clientID)
			handlers.RespondNotFound(w, msgClientNotFound)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: employee_id=%d, client_id=%d, error=%v",
				req.EmployeeID, clientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result, h.loc)

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, tracking_code=%s, employee_id=%d",
		result.Appointment.ID, result.Appointment.TrackingCode, req.EmployeeID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
