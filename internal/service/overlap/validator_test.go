package overlap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
	"github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

type fixedTime time.Time

func (f fixedTime) Now() time.Time { return time.Time(f) }

type fakeEmployees map[int64]*domain.Employee

func (f fakeEmployees) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, employeeRepo.ErrEmployeeNotFound
}

type fakeAppointments []*domain.Appointment

func (f fakeAppointments) ListByEmployee(_ context.Context, employeeID int64, from, to time.Time, includeCancelled bool) ([]*domain.Appointment, error) {
	out := make([]*domain.Appointment, 0)
	for _, a := range f {
		if a.EmployeeID != employeeID || a.StartAt.Before(from) || !a.StartAt.Before(to) {
			continue
		}
		if !includeCancelled && a.IsCancelled() {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type noBlocks struct{}

func (noBlocks) ListBlockedRanges(context.Context, int64, time.Time) ([]domain.Interval, error) {
	return nil, nil
}

var (
	loc    = time.UTC
	monday = time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	lunch  = domain.TimeRange{Start: "13:00", End: "14:30"}
)

func at(hhmm string) time.Time {
	return types.MustFromString(hhmm).On(monday, loc)
}

func employees() fakeEmployees {
	e := &domain.Employee{ID: 1, Name: "Carlos", IsActive: true}
	e.WorkingHours.Set(time.Monday, domain.TimeRange{Start: "09:00", End: "20:00"})
	retired := &domain.Employee{ID: 3, Name: "Jorge", IsActive: false}
	retired.WorkingHours.Set(time.Monday, domain.TimeRange{Start: "09:00", End: "20:00"})
	return fakeEmployees{1: e, 3: retired}
}

func newValidator(existing fakeAppointments) *Validator {
	return NewValidator(employees(), existing, lunch, loc).
		WithTimeProvider(fixedTime(monday.Add(-24 * time.Hour)))
}

func TestValidate(t *testing.T) {
	existing := fakeAppointments{
		{ID: 10, EmployeeID: 1, StartAt: at("10:00"), DurationMinutes: 30, Status: domain.StatusConfirmed},
		{ID: 11, EmployeeID: 1, StartAt: at("11:00"), DurationMinutes: 30, Status: domain.StatusCancelled},
		{ID: 12, EmployeeID: 1, StartAt: at("16:00"), DurationMinutes: 60, Status: domain.StatusCompleted},
	}

	tests := []struct {
		name    string
		p       Proposal
		wantErr error
	}{
		{"free slot", Proposal{EmployeeID: 1, StartAt: at("09:00"), DurationMinutes: 30}, nil},
		{"double booking", Proposal{EmployeeID: 1, StartAt: at("10:15"), DurationMinutes: 30}, ErrDoubleBooking},
		{"adjacent before", Proposal{EmployeeID: 1, StartAt: at("09:30"), DurationMinutes: 30}, nil},
		{"adjacent after", Proposal{EmployeeID: 1, StartAt: at("10:30"), DurationMinutes: 30}, nil},
		{"cancelled ignored", Proposal{EmployeeID: 1, StartAt: at("11:00"), DurationMinutes: 30}, nil},
		{"completed occupies", Proposal{EmployeeID: 1, StartAt: at("16:30"), DurationMinutes: 30}, ErrDoubleBooking},
		{"lunch window", Proposal{EmployeeID: 1, StartAt: at("13:15"), DurationMinutes: 30}, ErrLunchWindow},
		{"ends inside lunch", Proposal{EmployeeID: 1, StartAt: at("12:45"), DurationMinutes: 30}, ErrLunchWindow},
		{"after lunch", Proposal{EmployeeID: 1, StartAt: at("14:30"), DurationMinutes: 30}, nil},
		{"before opening", Proposal{EmployeeID: 1, StartAt: at("08:45"), DurationMinutes: 30}, ErrOutsideWorkingHours},
		{"ends after closing", Proposal{EmployeeID: 1, StartAt: at("19:45"), DurationMinutes: 30}, ErrOutsideWorkingHours},
		{"last slot", Proposal{EmployeeID: 1, StartAt: at("19:30"), DurationMinutes: 30}, nil},
		{"day off", Proposal{EmployeeID: 1, StartAt: at("10:00").AddDate(0, 0, 1), DurationMinutes: 30}, ErrOutsideWorkingHours},
		{"exclude self", Proposal{EmployeeID: 1, StartAt: at("10:15"), DurationMinutes: 30, ExcludeAppointmentID: ptr.Ptr(int64(10))}, nil},
		{"unknown employee", Proposal{EmployeeID: 2, StartAt: at("10:00"), DurationMinutes: 30}, ErrEmployeeNotFound},
		{"inactive employee", Proposal{EmployeeID: 3, StartAt: at("10:00"), DurationMinutes: 30}, ErrEmployeeNotFound},
		{"invalid duration", Proposal{EmployeeID: 1, StartAt: at("10:00")}, ErrInvalidProposal},
	}

	v := newValidator(existing)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.p)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_PastDate(t *testing.T) {
	v := NewValidator(employees(), fakeAppointments{}, lunch, loc).
		WithTimeProvider(fixedTime(at("12:00")))

	err := v.Validate(context.Background(), Proposal{EmployeeID: 1, StartAt: at("11:00"), DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrPastDate)

	err = v.Validate(context.Background(), Proposal{EmployeeID: 1, StartAt: at("11:00"), DurationMinutes: 30, SkipPastCheck: true})
	assert.NoError(t, err)

	// ровно "сейчас" не считается прошлым
	err = v.Validate(context.Background(), Proposal{EmployeeID: 1, StartAt: at("12:00"), DurationMinutes: 30})
	assert.NoError(t, err)
}

func TestValidate_PastDateCheckedFirst(t *testing.T) {
	v := NewValidator(employees(), fakeAppointments{}, lunch, loc).
		WithTimeProvider(fixedTime(at("15:00")))

	// и в прошлом, и в обед: первой срабатывает проверка прошлого
	err := v.Validate(context.Background(), Proposal{EmployeeID: 1, StartAt: at("13:15"), DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestValidate_Idempotent(t *testing.T) {
	existing := fakeAppointments{
		{ID: 10, EmployeeID: 1, StartAt: at("10:00"), DurationMinutes: 30, Status: domain.StatusPending},
	}
	v := newValidator(existing)
	p := Proposal{EmployeeID: 1, StartAt: at("10:15"), DurationMinutes: 30}

	first := v.Validate(context.Background(), p)
	second := v.Validate(context.Background(), p)
	assert.ErrorIs(t, first, ErrDoubleBooking)
	assert.Equal(t, first.Error(), second.Error())
}

// Каждый слот калькулятора проходит валидацию для того же мастера, даты и длительности
func TestValidate_AcceptsEverySlotFromCalculator(t *testing.T) {
	existing := fakeAppointments{
		{ID: 10, EmployeeID: 1, StartAt: at("10:00"), DurationMinutes: 45, Status: domain.StatusConfirmed},
		{ID: 11, EmployeeID: 1, StartAt: at("17:10"), DurationMinutes: 20, Status: domain.StatusPending},
	}

	calc := get_available_slots.NewUseCase(employees(), existing, noBlocks{}, lunch, loc, logger.NewNop())
	v := newValidator(existing)

	for _, duration := range []int{15, 20, 30, 40, 45, 60, 90} {
		resp, err := calc.Execute(context.Background(), &get_available_slots.Request{
			EmployeeID:      1,
			Date:            monday,
			DurationMinutes: duration,
		})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Slots)

		for _, slot := range resp.Slots {
			err := v.Validate(context.Background(), Proposal{
				EmployeeID:      1,
				StartAt:         slot.On(monday, loc),
				DurationMinutes: duration,
			})
			assert.NoError(t, err, "duration=%d slot=%s", duration, slot)
		}
	}
}

// Каждое время сетки, которое валидатор принимает, есть в выдаче калькулятора
func TestValidate_CalculatorIsComplete(t *testing.T) {
	existing := fakeAppointments{
		{ID: 10, EmployeeID: 1, StartAt: at("10:00"), DurationMinutes: 30, Status: domain.StatusConfirmed},
	}

	calc := get_available_slots.NewUseCase(employees(), existing, noBlocks{}, lunch, loc, logger.NewNop())
	v := newValidator(existing)

	resp, err := calc.Execute(context.Background(), &get_available_slots.Request{EmployeeID: 1, Date: monday, DurationMinutes: 30})
	require.NoError(t, err)

	offered := make(map[types.TimeString]bool, len(resp.Slots))
	for _, s := range resp.Slots {
		offered[s] = true
	}

	for start := at("09:00"); !start.Add(30 * time.Minute).After(at("20:00")); start = start.Add(30 * time.Minute) {
		err := v.Validate(context.Background(), Proposal{EmployeeID: 1, StartAt: start, DurationMinutes: 30})
		assert.Equal(t, err == nil, offered[types.NewTimeString(start)], "slot %s", start.Format("15:04"))
	}
}
