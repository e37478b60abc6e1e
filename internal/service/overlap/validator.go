package overlap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
)

// Proposal предлагаемая запись
type Proposal struct {
	EmployeeID           int64
	StartAt              time.Time
	DurationMinutes      int
	ExcludeAppointmentID *int64 // при переносе сама запись не считается конфликтом
	SkipPastCheck        bool   // восстановление отмененной записи из прошлого
}

// Interval полуоткрытый интервал предлагаемой записи
func (p Proposal) Interval() domain.Interval {
	return domain.NewInterval(p.StartAt, p.DurationMinutes)
}

// Validator проверка одной предлагаемой записи перед созданием или изменением
//
// Побочных эффектов нет. Если вызывается внутри транзакции, записи мастера на день
// читаются с FOR UPDATE, и проверка вместе со вставкой становится атомарной
type Validator struct {
	employeeRepo    EmployeeRepository
	appointmentRepo AppointmentRepository
	lunch           domain.TimeRange
	loc             *time.Location
	timeProvider    TimeProvider
}

// NewValidator создает новый валидатор
func NewValidator(
	employeeRepo EmployeeRepository,
	appointmentRepo AppointmentRepository,
	lunch domain.TimeRange,
	loc *time.Location,
) *Validator {
	return &Validator{
		employeeRepo:    employeeRepo,
		appointmentRepo: appointmentRepo,
		lunch:           lunch,
		loc:             loc,
		timeProvider:    &RealTimeProvider{},
	}
}

// WithTimeProvider подменяет источник текущего времени
func (v *Validator) WithTimeProvider(tp TimeProvider) *Validator {
	v.timeProvider = tp
	return v
}

// Validate возвращает nil или причину отказа (ErrPastDate, ErrLunchWindow,
// ErrOutsideWorkingHours, ErrDoubleBooking)
func (v *Validator) Validate(ctx context.Context, p Proposal) error {
	if p.EmployeeID <= 0 || p.DurationMinutes <= 0 || p.StartAt.IsZero() {
		return fmt.Errorf("%w: employee_id=%d duration=%d", ErrInvalidProposal, p.EmployeeID, p.DurationMinutes)
	}

	start := p.StartAt.In(v.loc)
	proposed := domain.NewInterval(start, p.DurationMinutes)

	if !p.SkipPastCheck && start.Before(v.timeProvider.Now()) {
		return ErrPastDate
	}

	if proposed.Overlaps(v.lunch.On(start, v.loc)) {
		return ErrLunchWindow
	}

	employee, err := v.employeeRepo.GetByID(ctx, p.EmployeeID)
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			return ErrEmployeeNotFound
		}
		return fmt.Errorf("%w: get employee id=%d: %w", ErrInternal, p.EmployeeID, err)
	}
	if !employee.IsActive {
		// Неактивному мастеру калькулятор слотов ничего не предлагает
		return ErrEmployeeNotFound
	}

	workRange, ok := employee.WorkingHours.For(start.Weekday())
	if !ok || !workRange.On(start, v.loc).Contains(proposed) {
		return ErrOutsideWorkingHours
	}

	// Только записи того же дня: рабочий интервал не переходит через полночь
	y, m, d := start.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, v.loc)

	existing, err := v.appointmentRepo.ListByEmployee(ctx, p.EmployeeID, dayStart, dayStart.AddDate(0, 0, 1), false)
	if err != nil {
		return fmt.Errorf("%w: list appointments employee=%d: %w", ErrInternal, p.EmployeeID, err)
	}

	for _, a := range existing {
		if !a.OccupiesTime() {
			continue
		}
		if p.ExcludeAppointmentID != nil && a.ID == *p.ExcludeAppointmentID {
			continue
		}
		if proposed.Overlaps(a.Interval()) {
			return fmt.Errorf("%w: conflicts with appointment id=%d", ErrDoubleBooking, a.ID)
		}
	}

	return nil
}

// IsConflict true для причин отказа, которые пользователь может исправить выбором другого времени
func IsConflict(err error) bool {
	return errors.Is(err, ErrPastDate) ||
		errors.Is(err, ErrLunchWindow) ||
		errors.Is(err, ErrOutsideWorkingHours) ||
		errors.Is(err, ErrDoubleBooking)
}
