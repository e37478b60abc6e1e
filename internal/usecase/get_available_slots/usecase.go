package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// UseCase use case для расчета свободных слотов мастера на день
// Только чтение: ничего не сохраняет
type UseCase struct {
	employeeRepo    EmployeeRepository
	appointmentRepo AppointmentRepository
	calendar        CalendarProvider
	lunch           domain.TimeRange
	loc             *time.Location
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	employeeRepo EmployeeRepository,
	appointmentRepo AppointmentRepository,
	calendar CalendarProvider,
	lunch domain.TimeRange,
	loc *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		employeeRepo:    employeeRepo,
		appointmentRepo: appointmentRepo,
		calendar:        calendar,
		lunch:           lunch,
		loc:             loc,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	dayStart, dayEnd := dayBounds(req.Date, uc.loc)
	dateStr := dayStart.Format(domain.DateFormat)

	resp := &Response{
		EmployeeID:      req.EmployeeID,
		Date:            dayStart,
		DurationMinutes: req.DurationMinutes,
	}

	// 1. Рабочий интервал мастера на день недели
	employee, err := uc.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("GetAvailableSlots: employee id=%d not found", req.EmployeeID)
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get employee id=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}

	workRange, ok := employee.WorkingHours.For(dayStart.Weekday())
	if !ok || !employee.IsActive {
		uc.logger.Info("GetAvailableSlots: employee id=%d does not work on %s", req.EmployeeID, dateStr)
		resp.Slots = emptySlots()
		return resp, nil
	}

	duration := time.Duration(req.DurationMinutes) * time.Minute

	// 2. Кандидаты
	candidates := generateCandidates(workRange.On(dayStart, uc.loc), duration)
	if len(candidates) == 0 {
		resp.Slots = emptySlots()
		return resp, nil
	}

	// 3. Занятые интервалы
	appointments, err := uc.appointmentRepo.ListByEmployee(ctx, req.EmployeeID, dayStart, dayEnd, false)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments employee=%d date=%s: %v",
			req.EmployeeID, dateStr, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// Календарь необязателен: при ошибке считаем, что внешних блоков нет
	blocks, err := uc.calendar.ListBlockedRanges(ctx, req.EmployeeID, dayStart)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: calendar blocks unavailable for employee=%d date=%s, ignoring: %v",
			req.EmployeeID, dateStr, err)
		blocks = nil
	}

	occupied := occupiedRanges(appointments, uc.lunch.On(dayStart, uc.loc), blocks)

	// 4-5. Фильтрация, порядок сохраняется по возрастанию
	resp.Slots = freeSlots(candidates, duration, occupied)

	uc.logger.Info("GetAvailableSlots: %d of %d slots free for employee=%d date=%s duration=%d",
		len(resp.Slots), len(candidates), req.EmployeeID, dateStr, req.DurationMinutes)

	return resp, nil
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidInput)
	}
	if req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee_id must be positive", ErrInvalidInput)
	}
	if req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be in [%d, %d] minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

func emptySlots() []types.TimeString {
	return []types.TimeString{}
}
