package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	conversationRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/conversation"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-BarberService/pkg/trackingcode"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// memConversations хранилище диалогов с версионированием, как в Postgres-репозитории
type memConversations struct {
	mu      sync.Mutex
	rows    map[int64]*domain.Conversation
	nextID  int64
	saveErr error
	// saveFails сколько раз вернуть saveErr; 0 означает всегда
	saveFails int
}

func newMemConversations() *memConversations {
	return &memConversations{rows: map[int64]*domain.Conversation{}}
}

func (m *memConversations) GetActiveByPhone(_ context.Context, phone string) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Phone == phone && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, conversationRepo.ErrConversationNotFound
}

func (m *memConversations) Create(_ context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Phone == c.Phone && row.IsActive {
			return nil, conversationRepo.ErrActiveConversationExists
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.Version = 1
	c.IsActive = true
	cp := *c
	m.rows[c.ID] = &cp
	return c, nil
}

func (m *memConversations) Save(_ context.Context, c *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		err := m.saveErr
		if m.saveFails > 0 {
			m.saveFails--
			if m.saveFails == 0 {
				m.saveErr = nil
			}
		}
		return err
	}
	row, ok := m.rows[c.ID]
	if !ok || row.Version != c.Version {
		return fmt.Errorf("%w: id=%d", conversationRepo.ErrVersionConflict, c.ID)
	}
	c.Version++
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

// seed кладет диалог напрямую
func (m *memConversations) seed(c *domain.Conversation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	if c.Version == 0 {
		c.Version = 1
	}
	cp := *c
	m.rows[c.ID] = &cp
}

func (m *memConversations) active(phone string) *domain.Conversation {
	c, err := m.GetActiveByPhone(context.Background(), phone)
	if err != nil {
		return nil
	}
	return c
}

type fakeEmployees struct {
	list []*domain.Employee
	err  error
}

func (f *fakeEmployees) ListActive(context.Context) ([]*domain.Employee, error) {
	return f.list, f.err
}

type fakeCatalog struct {
	list []*domain.Service
}

func (f *fakeCatalog) ListActive(context.Context) ([]*domain.Service, error) {
	return f.list, nil
}

type fakeClients map[int64]*domain.Client

func (f fakeClients) GetByID(_ context.Context, id int64) (*domain.Client, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client %d not found", id)
}

type fakeResolver struct {
	names []string
}

func (f *fakeResolver) ResolveForBooking(_ context.Context, phone, name string) (*domain.Client, error) {
	f.names = append(f.names, name)
	return &domain.Client{ID: 7, Name: name, Phone: phone}, nil
}

type fakeSlots struct {
	responses [][]types.TimeString
	calls     []*get_available_slots.Request
	panicMsg  string
}

func (f *fakeSlots) Execute(_ context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.calls = append(f.calls, req)
	i := len(f.calls) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return &get_available_slots.Response{
		EmployeeID:      req.EmployeeID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Slots:           f.responses[i],
	}, nil
}

type fakeCreator struct {
	requests []*create_appointment.Request
	errs     []error
}

func (f *fakeCreator) Execute(_ context.Context, req *create_appointment.Request) (*create_appointment.Response, error) {
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &create_appointment.Response{Appointment: &domain.Appointment{
		ID:              100,
		TrackingCode:    "BB-260303-K7M2Q",
		ClientID:        req.ClientID,
		EmployeeID:      req.EmployeeID,
		ServiceName:     req.ServiceName,
		StartAt:         req.StartAt,
		DurationMinutes: req.DurationMinutes,
		Origin:          req.Origin,
		Status:          req.Origin.InitialStatus(),
	}}, nil
}

type fakeAppointments struct {
	byCode    map[string]*domain.Appointment
	cancelled []string
}

func (f *fakeAppointments) GetByTrackingCode(_ context.Context, code string) (*domain.Appointment, error) {
	if a, ok := f.byCode[trackingcode.Normalize(code)]; ok {
		return a, nil
	}
	return nil, appointments.ErrAppointmentNotFound
}

func (f *fakeAppointments) CancelByTrackingCode(_ context.Context, code string) (*appointments.Result, error) {
	a, ok := f.byCode[code]
	if !ok {
		return nil, appointments.ErrAppointmentNotFound
	}
	f.cancelled = append(f.cancelled, code)
	a.Status = domain.StatusCancelled
	return &appointments.Result{Appointment: a}, nil
}

type fakeMessenger struct {
	mu    sync.Mutex
	sent  []string
	reads []string
}

func (f *fakeMessenger) SendText(_ context.Context, _, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, body)
	return nil
}

func (f *fakeMessenger) MarkRead(_ context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, messageID)
	return nil
}

type directTx struct{}

func (directTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f *fixedTime) Now() time.Time { return f.now }
