package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/appointment"
	clientRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/client"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
)

// Mocks

type appointmentRepoMock struct{ mock.Mock }

func (m *appointmentRepoMock) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, a)
	switch r := args.Get(0).(type) {
	case *domain.Appointment:
		return r, args.Error(1)
	case func(*domain.Appointment) *domain.Appointment:
		return r(a), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *appointmentRepoMock) SetCalendarEventID(ctx context.Context, id int64, eventID string) error {
	return m.Called(ctx, id, eventID).Error(0)
}

type employeeRepoMock struct{ mock.Mock }

func (m *employeeRepoMock) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*domain.Employee); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type clientRepoMock struct{ mock.Mock }

func (m *clientRepoMock) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*domain.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type catalogMock struct{ mock.Mock }

func (m *catalogMock) ListActive(ctx context.Context) ([]*domain.Service, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).([]*domain.Service); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type ledgerMock struct{ mock.Mock }

func (m *ledgerMock) CreatePendingEntry(ctx context.Context, e *domain.LedgerEntry) error {
	return m.Called(ctx, e).Error(0)
}

type calendarMock struct{ mock.Mock }

func (m *calendarMock) CreateEvent(ctx context.Context, a *domain.Appointment) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

type validatorMock struct{ mock.Mock }

func (m *validatorMock) Validate(ctx context.Context, p overlap.Proposal) error {
	return m.Called(ctx, p).Error(0)
}

type metricsMock struct{ origins []string }

func (m *metricsMock) IncAppointmentCreated(origin string) {
	m.origins = append(m.origins, origin)
}

// directTx выполняет fn без реальной транзакции
type directTx struct{ calls int }

func (t *directTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type sequenceCodes struct {
	codes []string
	next  int
}

func (s *sequenceCodes) Generate() string {
	code := s.codes[s.next%len(s.codes)]
	s.next++
	return code
}

// Fixture

type fixture struct {
	appointments *appointmentRepoMock
	employees    *employeeRepoMock
	clients      *clientRepoMock
	catalog      *catalogMock
	ledger       *ledgerMock
	calendar     *calendarMock
	validator    *validatorMock
	codes        *sequenceCodes
	tx           *directTx
	metrics      *metricsMock
	uc           *UseCase
}

var start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		appointments: &appointmentRepoMock{},
		employees:    &employeeRepoMock{},
		clients:      &clientRepoMock{},
		catalog:      &catalogMock{},
		ledger:       &ledgerMock{},
		calendar:     &calendarMock{},
		validator:    &validatorMock{},
		codes:        &sequenceCodes{codes: []string{"BB-260302-AAAAA", "BB-260302-BBBBB", "BB-260302-CCCCC"}},
		tx:           &directTx{},
		metrics:      &metricsMock{},
	}
	log := logger.NewNop()
	f.uc = NewUseCase(
		f.appointments, f.employees, f.clients, f.catalog, f.ledger, f.calendar, f.validator,
		f.codes, f.tx, besteffort.NewDispatcher(log, time.Second, nil), f.metrics, 30, log,
	)
	return f
}

func (f *fixture) withDirectory() {
	f.employees.On("GetByID", mock.Anything, int64(1)).Return(&domain.Employee{ID: 1, Name: "Carlos", IsActive: true}, nil)
	f.clients.On("GetByID", mock.Anything, int64(7)).Return(&domain.Client{ID: 7, Name: "Ana Gomez", Phone: "+573001112233"}, nil)
	f.catalog.On("ListActive", mock.Anything).Return([]*domain.Service{
		{ID: 1, Name: "Corte clásico", Price: 25000, DurationMinutes: 30, IsActive: true},
		{ID: 2, Name: "Barba", Price: 15000, DurationMinutes: 20, IsActive: true},
	}, nil)
}

// expectCreate имитирует вставку: возвращает копию записи с присвоенным id
func (f *fixture) expectCreate(id int64) *mock.Call {
	return f.appointments.On("Create", mock.Anything, mock.Anything).
		Return(func(a *domain.Appointment) *domain.Appointment {
			out := *a
			out.ID = id
			return &out
		}, nil)
}

func manualRequest() *Request {
	return &Request{
		ClientID:    7,
		EmployeeID:  1,
		ServiceName: "corte clasico",
		StartAt:     start,
		Origin:      domain.OriginManual,
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, overlap.Proposal{EmployeeID: 1, StartAt: start, DurationMinutes: 30}).Return(nil)
	f.appointments.On("Create", mock.Anything, mock.Anything).Return(&domain.Appointment{
		ID: 42, TrackingCode: "BB-260302-AAAAA", ClientID: 7, EmployeeID: 1, ServiceName: "corte clasico",
		StartAt: start, DurationMinutes: 30, Origin: domain.OriginManual, Status: domain.StatusPending,
	}, nil)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("evt-1", nil)
	f.appointments.On("SetCalendarEventID", mock.Anything, int64(42), "evt-1").Return(nil)
	f.ledger.On("CreatePendingEntry", mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
		return e.AppointmentID == 42 && e.Amount == 25000 && e.Status == domain.LedgerPending
	})).Return(nil)

	resp, err := f.uc.Execute(context.Background(), manualRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.Appointment.ID)
	assert.Equal(t, domain.StatusPending, resp.Appointment.Status)
	require.NotNil(t, resp.Appointment.CalendarEventID)
	assert.Equal(t, "evt-1", *resp.Appointment.CalendarEventID)
	assert.True(t, resp.CalendarSync.OK())
	assert.True(t, resp.LedgerEntry.OK())
	assert.Equal(t, []string{"manual"}, f.metrics.origins)

	inserted := f.appointments.Calls[0].Arguments.Get(1).(*domain.Appointment)
	assert.Equal(t, "BB-260302-AAAAA", inserted.TrackingCode)
	f.ledger.AssertExpectations(t)
}

func TestExecute_InitialStatusByOrigin(t *testing.T) {
	tests := []struct {
		origin domain.Origin
		want   domain.AppointmentStatus
	}{
		{domain.OriginManual, domain.StatusPending},
		{domain.OriginConversational, domain.StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(string(tt.origin), func(t *testing.T) {
			f := newFixture()
			f.withDirectory()
			f.validator.On("Validate", mock.Anything, mock.Anything).Return(nil)
			f.expectCreate(1)
			f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", nil)
			f.ledger.On("CreatePendingEntry", mock.Anything, mock.Anything).Return(nil)

			req := manualRequest()
			req.Origin = tt.origin
			resp, err := f.uc.Execute(context.Background(), req)

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Appointment.Status)
			assert.Nil(t, resp.Appointment.CalendarEventID)
			f.appointments.AssertNotCalled(t, "SetCalendarEventID", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecute_DurationFromCatalog(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, overlap.Proposal{EmployeeID: 1, StartAt: start, DurationMinutes: 20}).Return(nil)
	f.expectCreate(3)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", nil)
	f.ledger.On("CreatePendingEntry", mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
		return e.Amount == 15000
	})).Return(nil)

	req := manualRequest()
	req.ServiceName = "BARBA"
	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 20, resp.Appointment.DurationMinutes)
	f.validator.AssertExpectations(t)
}

func TestExecute_UnknownServiceUsesDefaults(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, overlap.Proposal{EmployeeID: 1, StartAt: start, DurationMinutes: 30}).Return(nil)
	f.expectCreate(3)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", nil)
	f.ledger.On("CreatePendingEntry", mock.Anything, mock.MatchedBy(func(e *domain.LedgerEntry) bool {
		return e.Amount == 0
	})).Return(nil)

	req := manualRequest()
	req.ServiceName = "Tinte"
	_, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	f.ledger.AssertExpectations(t)
}

func TestExecute_ValidationReasonIsJoined(t *testing.T) {
	tests := []struct {
		reason error
		want   error
	}{
		{overlap.ErrPastDate, overlap.ErrPastDate},
		{overlap.ErrLunchWindow, overlap.ErrLunchWindow},
		{overlap.ErrOutsideWorkingHours, overlap.ErrOutsideWorkingHours},
		{fmt.Errorf("%w: conflicts with appointment id=5", overlap.ErrDoubleBooking), overlap.ErrDoubleBooking},
	}

	for _, tt := range tests {
		t.Run(tt.want.Error(), func(t *testing.T) {
			f := newFixture()
			f.withDirectory()
			f.validator.On("Validate", mock.Anything, mock.Anything).Return(tt.reason)

			resp, err := f.uc.Execute(context.Background(), manualRequest())

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, overlap.IsConflict(err))
			f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.metrics.origins)
		})
	}
}

func TestExecute_SideEffectFailuresDoNotFailCreate(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, mock.Anything).Return(nil)
	f.expectCreate(9)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", errors.New("calendar down"))
	f.ledger.On("CreatePendingEntry", mock.Anything, mock.Anything).Return(errors.New("ledger down"))

	resp, err := f.uc.Execute(context.Background(), manualRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.Appointment.ID)
	assert.True(t, resp.CalendarSync.Failed())
	assert.True(t, resp.LedgerEntry.Failed())
}

func TestExecute_TrackingCodeCollisionRetried(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, mock.Anything).Return(nil)
	f.appointments.On("Create", mock.Anything, mock.Anything).
		Return(nil, appointmentRepo.ErrDuplicateTrackingCode).Once()
	f.expectCreate(11)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return("", nil)
	f.ledger.On("CreatePendingEntry", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.uc.Execute(context.Background(), manualRequest())

	require.NoError(t, err)
	assert.Equal(t, "BB-260302-BBBBB", resp.Appointment.TrackingCode)
	assert.Equal(t, 2, f.tx.calls)
}

func TestExecute_TrackingCodeCollisionGivesUp(t *testing.T) {
	f := newFixture()
	f.withDirectory()
	f.validator.On("Validate", mock.Anything, mock.Anything).Return(nil)
	f.appointments.On("Create", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: Create: %w", appointmentRepo.ErrExecQuery, appointmentRepo.ErrDuplicateTrackingCode))

	resp, err := f.uc.Execute(context.Background(), manualRequest())

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, maxTrackingCodeAttempts, f.tx.calls)
}

func TestExecute_DirectoryErrors(t *testing.T) {
	t.Run("employee not found", func(t *testing.T) {
		f := newFixture()
		f.employees.On("GetByID", mock.Anything, int64(1)).Return(nil, employeeRepo.ErrEmployeeNotFound)

		_, err := f.uc.Execute(context.Background(), manualRequest())
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})

	t.Run("inactive employee", func(t *testing.T) {
		f := newFixture()
		f.employees.On("GetByID", mock.Anything, int64(1)).Return(&domain.Employee{ID: 1, IsActive: false}, nil)

		_, err := f.uc.Execute(context.Background(), manualRequest())
		assert.ErrorIs(t, err, ErrEmployeeNotFound)
	})

	t.Run("client not found", func(t *testing.T) {
		f := newFixture()
		f.employees.On("GetByID", mock.Anything, int64(1)).Return(&domain.Employee{ID: 1, IsActive: true}, nil)
		f.clients.On("GetByID", mock.Anything, int64(7)).Return(nil, clientRepo.ErrClientNotFound)

		_, err := f.uc.Execute(context.Background(), manualRequest())
		assert.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture()
		f.employees.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("connection refused"))

		_, err := f.uc.Execute(context.Background(), manualRequest())
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestExecute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"no client", func(r *Request) { r.ClientID = 0 }},
		{"no employee", func(r *Request) { r.EmployeeID = -1 }},
		{"blank service", func(r *Request) { r.ServiceName = "   " }},
		{"zero start", func(r *Request) { r.StartAt = time.Time{} }},
		{"too short", func(r *Request) { r.DurationMinutes = 2 }},
		{"too long", func(r *Request) { r.DurationMinutes = 1000 }},
		{"bad origin", func(r *Request) { r.Origin = "fax" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := manualRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)

			assert.ErrorIs(t, err, ErrInvalidInput)
			f.employees.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}
