package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/appointment"
	clientRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/client"
	employeeRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/employee"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/textnorm"
)

const (
	maxTrackingCodeAttempts = 3

	opCalendarCreate = "calendar_create_event"
	opLedgerPending  = "ledger_create_pending"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	employeeRepo    EmployeeRepository
	clientRepo      ClientRepository
	catalog         ServiceCatalog
	ledger          LedgerRepository
	calendar        CalendarProvider
	validator       Validator
	codes           TrackingCodeGenerator
	txManager       TransactionManager
	sideEffects     *besteffort.Dispatcher
	metrics         MetricsRecorder
	defaultDuration int
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	employeeRepo EmployeeRepository,
	clientRepo ClientRepository,
	catalog ServiceCatalog,
	ledger LedgerRepository,
	calendar CalendarProvider,
	validator Validator,
	codes TrackingCodeGenerator,
	txManager TransactionManager,
	sideEffects *besteffort.Dispatcher,
	metrics MetricsRecorder,
	defaultDuration int,
	logger Logger,
) *UseCase {
	if defaultDuration <= 0 {
		defaultDuration = domain.DefaultSlotDurationMinutes
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		employeeRepo:    employeeRepo,
		clientRepo:      clientRepo,
		catalog:         catalog,
		ledger:          ledger,
		calendar:        calendar,
		validator:       validator,
		codes:           codes,
		txManager:       txManager,
		sideEffects:     sideEffects,
		metrics:         metrics,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
// Проверка пересечений и вставка идут в одной сериализуемой транзакции,
// календарь и журнал оплат обновляются после фиксации и на результат не влияют
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateAppointment: client=%d, employee=%d, service=%q, start=%s, origin=%s",
		req.ClientID, req.EmployeeID, req.ServiceName, req.StartAt.Format("2006-01-02 15:04"), req.Origin)

	// 2. Мастер
	employee, err := uc.employeeRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employeeRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("CreateAppointment: employee id=%d not found", req.EmployeeID)
			return nil, ErrEmployeeNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get employee id=%d: %v", req.EmployeeID, err)
		return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}
	if !employee.IsActive {
		uc.logger.Warn("CreateAppointment: employee id=%d is not active", req.EmployeeID)
		return nil, fmt.Errorf("%w: employee id=%d is not active", ErrEmployeeNotFound, req.EmployeeID)
	}

	// 3. Клиент
	if _, err := uc.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, clientRepo.ErrClientNotFound) {
			uc.logger.Warn("CreateAppointment: client id=%d not found", req.ClientID)
			return nil, ErrClientNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get client id=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: failed to get client: %v", ErrInternal, err)
	}

	// 4. Услуга из прайс-листа: цена для журнала и длительность по умолчанию
	// Ошибка каталога не мешает записи: цена будет 0
	service := uc.findService(ctx, req.ServiceName)

	duration := req.DurationMinutes
	if duration == 0 {
		duration = uc.defaultDuration
		if service != nil && service.DurationMinutes > 0 {
			duration = service.DurationMinutes
		}
	}

	appointment := &domain.Appointment{
		ClientID:        req.ClientID,
		EmployeeID:      req.EmployeeID,
		ServiceName:     strings.TrimSpace(req.ServiceName),
		StartAt:         req.StartAt,
		DurationMinutes: duration,
		Origin:          req.Origin,
		Status:          req.Origin.InitialStatus(),
		Notes:           req.Notes,
	}

	// 5. Проверка + вставка. Коллизия кода откатывает транзакцию, поэтому повторяем ее целиком
	for attempt := 1; ; attempt++ {
		appointment.TrackingCode = uc.codes.Generate()

		err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
			return uc.validateAndInsert(txCtx, appointment)
		})
		if !errors.Is(err, appointmentRepo.ErrDuplicateTrackingCode) || attempt >= maxTrackingCodeAttempts {
			break
		}
		uc.logger.Warn("CreateAppointment: tracking code %s collision, retrying (attempt %d)",
			appointment.TrackingCode, attempt)
	}
	if err != nil {
		return nil, uc.mapError(err)
	}

	uc.logger.Info("CreateAppointment: created appointment id=%d code=%s status=%s",
		appointment.ID, appointment.TrackingCode, appointment.Status)
	if uc.metrics != nil {
		uc.metrics.IncAppointmentCreated(string(appointment.Origin))
	}

	// 6. Побочные действия
	resp := &Response{Appointment: appointment}
	resp.CalendarSync = uc.sideEffects.Do(ctx, opCalendarCreate, func(ctx context.Context) error {
		eventID, err := uc.calendar.CreateEvent(ctx, appointment)
		if err != nil || eventID == "" {
			return err
		}
		appointment.CalendarEventID = &eventID
		return uc.appointmentRepo.SetCalendarEventID(ctx, appointment.ID, eventID)
	})
	resp.LedgerEntry = uc.sideEffects.Do(ctx, opLedgerPending, func(ctx context.Context) error {
		return uc.ledger.CreatePendingEntry(ctx, &domain.LedgerEntry{
			AppointmentID: appointment.ID,
			Amount:        priceOf(service),
			Status:        domain.LedgerPending,
			Description:   fmt.Sprintf("%s (%s)", appointment.ServiceName, appointment.TrackingCode),
		})
	})

	return resp, nil
}

func (uc *UseCase) validateAndInsert(txCtx context.Context, appointment *domain.Appointment) error {
	err := uc.validator.Validate(txCtx, overlap.Proposal{
		EmployeeID:      appointment.EmployeeID,
		StartAt:         appointment.StartAt,
		DurationMinutes: appointment.DurationMinutes,
	})
	if err != nil {
		return err
	}

	created, err := uc.appointmentRepo.Create(txCtx, appointment)
	if err != nil {
		return err
	}

	*appointment = *created
	return nil
}

// mapError переводит ошибки транзакции в ошибки use case
func (uc *UseCase) mapError(err error) error {
	switch {
	case overlap.IsConflict(err):
		uc.logger.Warn("CreateAppointment: rejected: %v", err)
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, overlap.ErrEmployeeNotFound):
		return ErrEmployeeNotFound
	case errors.Is(err, overlap.ErrInvalidProposal):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		uc.logger.Error("CreateAppointment: failed to create appointment: %v", err)
		return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
	}
}

// findService ищет услугу прайс-листа по названию без учета регистра и диакритики
func (uc *UseCase) findService(ctx context.Context, name string) *domain.Service {
	services, err := uc.catalog.ListActive(ctx)
	if err != nil {
		uc.logger.Warn("CreateAppointment: service catalog unavailable, price defaults to 0: %v", err)
		return nil
	}

	wanted := textnorm.Normalize(name)
	for _, s := range services {
		if textnorm.Normalize(s.Name) == wanted {
			return s
		}
	}
	return nil
}

func priceOf(service *domain.Service) float64 {
	if service == nil {
		return 0
	}
	return service.Price
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidInput)
	}
	if req.ClientID <= 0 {
		return fmt.Errorf("%w: client_id must be positive", ErrInvalidInput)
	}
	if req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee_id must be positive", ErrInvalidInput)
	}
	if name := strings.TrimSpace(req.ServiceName); name == "" || len(name) > domain.MaxServiceNameLength {
		return fmt.Errorf("%w: service_name is required (max %d chars)", ErrInvalidInput, domain.MaxServiceNameLength)
	}
	if req.StartAt.IsZero() {
		return fmt.Errorf("%w: start is required", ErrInvalidInput)
	}
	if req.DurationMinutes != 0 &&
		(req.DurationMinutes < domain.MinDurationMinutes || req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: duration must be in [%d, %d] minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if !req.Origin.IsValid() {
		return fmt.Errorf("%w: unknown origin %q", ErrInvalidInput, req.Origin)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d chars", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}
