package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/appointment"
	ledgerRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/ledger"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/phone"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
	"github.com/m04kA/SMC-BarberService/pkg/trackingcode"
)

const (
	OpCalendarUpdate = "calendar_update_event"
	OpLedgerVoid     = "ledger_void_pending"
)

// Result запись после операции и итоги побочных действий
type Result struct {
	Appointment *domain.Appointment
	SideEffects []besteffort.Result
}

// Service сервис жизненного цикла записей
type Service struct {
	appointmentRepo AppointmentRepository
	ledger          LedgerRepository
	calendar        CalendarProvider
	validator       Validator
	txManager       TransactionManager
	sideEffects     *besteffort.Dispatcher
	phoneRegion     string
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	ledger LedgerRepository,
	calendar CalendarProvider,
	validator Validator,
	txManager TransactionManager,
	sideEffects *besteffort.Dispatcher,
	phoneRegion string,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		ledger:          ledger,
		calendar:        calendar,
		validator:       validator,
		txManager:       txManager,
		sideEffects:     sideEffects,
		phoneRegion:     phoneRegion,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", err)
	}
	return appointment, nil
}

// GetByTrackingCode получает запись по коду отслеживания (регистр и пробелы не важны)
func (s *Service) GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error) {
	normalized := trackingcode.Normalize(code)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty tracking code", ErrInvalidInput)
	}

	appointment, err := s.appointmentRepo.GetByTrackingCode(ctx, normalized)
	if err != nil {
		return nil, s.mapRepoError("GetByTrackingCode", err)
	}
	return appointment, nil
}

// ListByClientPhone возвращает все записи клиента по номеру телефона
func (s *Service) ListByClientPhone(ctx context.Context, rawPhone string) ([]*domain.Appointment, error) {
	normalized, err := phone.Normalize(rawPhone, s.phoneRegion)
	if err != nil {
		s.logger.Warn("ListByClientPhone: invalid phone %q: %v", rawPhone, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	appointments, err := s.appointmentRepo.ListByClientPhone(ctx, normalized)
	if err != nil {
		s.logger.Error("ListByClientPhone: repository error for phone=%s: %v", normalized, err)
		return nil, fmt.Errorf("%w: ListByClientPhone - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByClientPhone: fetched %d appointments for phone=%s", len(appointments), normalized)
	return appointments, nil
}

// ListByEmployee возвращает записи мастера за период [from, to), включая отмененные
func (s *Service) ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]*domain.Appointment, error) {
	if employeeID <= 0 {
		return nil, fmt.Errorf("%w: employee_id must be positive", ErrInvalidInput)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.ListByEmployee(ctx, employeeID, from, to, true)
	if err != nil {
		s.logger.Error("ListByEmployee: repository error for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: ListByEmployee - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByEmployee: fetched %d appointments for employee=%d", len(appointments), employeeID)
	return appointments, nil
}

// Reschedule переносит запись: незаполненные поля запроса берутся из текущей записи,
// новое время проверяется валидатором без учета самой записи
func (s *Service) Reschedule(ctx context.Context, id int64, req *models.RescheduleRequest) (*Result, error) {
	if req == nil || req.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to change", ErrInvalidInput)
	}
	if err := validateReschedule(req); err != nil {
		return nil, err
	}

	s.logger.Info("Reschedule: appointment id=%d", id)

	var updated *domain.Appointment
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if current.IsCompleted() {
			return ErrImmutableState
		}

		merged := *current
		applyChanges(&merged, req)

		if timeChanged(current, &merged) && merged.OccupiesTime() {
			err = s.validator.Validate(txCtx, overlap.Proposal{
				EmployeeID:           merged.EmployeeID,
				StartAt:              merged.StartAt,
				DurationMinutes:      merged.DurationMinutes,
				ExcludeAppointmentID: &merged.ID,
			})
			if err != nil {
				return err
			}
		}

		if err := s.appointmentRepo.Update(txCtx, &merged); err != nil {
			return err
		}
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, s.mapTxError("Reschedule", id, err)
	}

	s.logger.Info("Reschedule: appointment id=%d now employee=%d start=%s duration=%d",
		id, updated.EmployeeID, updated.StartAt.Format(time.RFC3339), updated.DurationMinutes)

	return &Result{
		Appointment: updated,
		SideEffects: []besteffort.Result{s.syncCalendar(ctx, updated)},
	}, nil
}

// ChangeStatus меняет статус записи по таблице переходов
func (s *Service) ChangeStatus(ctx context.Context, id int64, req *models.ChangeStatusRequest) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidInput)
	}
	to, err := models.ToDomainStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}
	reason := ""
	if req.CancellationReason != nil {
		reason = strings.TrimSpace(*req.CancellationReason)
	}
	if len(reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d chars", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	s.logger.Info("ChangeStatus: appointment id=%d -> %s", id, to)
	return s.transition(ctx, "ChangeStatus", id, func(txCtx context.Context) (*domain.Appointment, error) {
		return s.appointmentRepo.GetByID(txCtx, id)
	}, to, reason)
}

// CancelByTrackingCode отменяет запись по коду отслеживания с системной причиной
// Владение записью (совпадение телефона) проверяет вызывающий код
func (s *Service) CancelByTrackingCode(ctx context.Context, code string) (*Result, error) {
	normalized := trackingcode.Normalize(code)
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty tracking code", ErrInvalidInput)
	}

	s.logger.Info("CancelByTrackingCode: code=%s", normalized)
	return s.transition(ctx, "CancelByTrackingCode", 0, func(txCtx context.Context) (*domain.Appointment, error) {
		return s.appointmentRepo.GetByTrackingCode(txCtx, normalized)
	}, domain.StatusCancelled, domain.SystemCancellationReason)
}

// transition общий путь смены статуса: чтение под блокировкой, проверка перехода,
// повторная проверка пересечений при возврате из отмены, сохранение, побочные действия
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	load func(txCtx context.Context) (*domain.Appointment, error),
	to domain.AppointmentStatus,
	reason string,
) (*Result, error) {
	var (
		updated *domain.Appointment
		from    domain.AppointmentStatus
	)

	// Сериализуемая транзакция нужна только при возврате из отмены, но отличить случай
	// можно лишь прочитав запись, поэтому используем ее всегда
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := load(txCtx)
		if err != nil {
			return err
		}
		from = current.Status

		if err := checkTransition(from, to, reason); err != nil {
			return err
		}

		if isRevival(from, to) {
			err = s.validator.Validate(txCtx, overlap.Proposal{
				EmployeeID:           current.EmployeeID,
				StartAt:              current.StartAt,
				DurationMinutes:      current.DurationMinutes,
				ExcludeAppointmentID: &current.ID,
				SkipPastCheck:        true,
			})
			if err != nil {
				return err
			}
		}

		next := *current
		next.Status = to
		if to == domain.StatusCancelled {
			next.CancellationReason = &reason
		} else {
			next.CancellationReason = nil
		}

		if err := s.appointmentRepo.Update(txCtx, &next); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, s.mapTxError(op, id, err)
	}

	s.logger.Info("%s: appointment id=%d %s -> %s", op, updated.ID, from, to)

	result := &Result{Appointment: updated}
	result.SideEffects = append(result.SideEffects, s.syncCalendar(ctx, updated))
	if to == domain.StatusCancelled {
		result.SideEffects = append(result.SideEffects, s.voidLedger(ctx, updated.ID))
	}
	return result, nil
}

// Delete удаляет незавершенную запись
func (s *Service) Delete(ctx context.Context, id int64) (*Result, error) {
	s.logger.Info("Delete: appointment id=%d", id)

	var (
		appointment  *domain.Appointment
		ledgerResult besteffort.Result
	)
	// Чтение под FOR UPDATE: между проверкой и удалением запись не станет COMPLETED
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		appointment, err = s.appointmentRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if appointment.IsCompleted() {
			return ErrCannotDeleteCompleted
		}

		// Журнал обновляем до удаления: после него связь appointment_id обнулится
		ledgerResult = s.voidLedger(ctx, id)

		return s.appointmentRepo.Delete(txCtx, id)
	})
	if errors.Is(err, ErrCannotDeleteCompleted) {
		s.logger.Warn("Delete: appointment id=%d is completed", id)
		return nil, ErrCannotDeleteCompleted
	}
	if err != nil {
		return nil, s.mapRepoError("Delete", err)
	}

	s.logger.Info("Delete: appointment id=%d deleted", id)
	return &Result{
		Appointment: appointment,
		SideEffects: []besteffort.Result{ledgerResult},
	}, nil
}

func (s *Service) syncCalendar(ctx context.Context, appointment *domain.Appointment) besteffort.Result {
	if appointment.CalendarEventID == nil || *appointment.CalendarEventID == "" {
		return besteffort.Result{Operation: OpCalendarUpdate}
	}
	return s.sideEffects.Do(ctx, OpCalendarUpdate, func(ctx context.Context) error {
		return s.calendar.UpdateEvent(ctx, appointment)
	})
}

func (s *Service) voidLedger(ctx context.Context, appointmentID int64) besteffort.Result {
	return s.sideEffects.Do(ctx, OpLedgerVoid, func(ctx context.Context) error {
		err := s.ledger.VoidPendingEntry(ctx, appointmentID)
		if errors.Is(err, ledgerRepo.ErrEntryNotFound) {
			return nil
		}
		return err
	})
}

func (s *Service) mapRepoError(op string, err error) error {
	if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
		s.logger.Warn("%s: appointment not found", op)
		return ErrAppointmentNotFound
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// mapTxError переводит ошибки транзакции в ошибки сервиса
func (s *Service) mapTxError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, ErrImmutableState),
		errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrInvalidInput):
		s.logger.Warn("%s: appointment id=%d rejected: %v", op, id, err)
		return err
	case errors.Is(err, overlap.ErrDoubleBooking):
		s.logger.Warn("%s: appointment id=%d rejected: %v", op, id, err)
		return fmt.Errorf("%w: %w", ErrNotAvailable, err)
	case overlap.IsConflict(err):
		s.logger.Warn("%s: appointment id=%d rejected: %v", op, id, err)
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, overlap.ErrEmployeeNotFound):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		s.logger.Warn("%s: appointment id=%d not found", op, id)
		return ErrAppointmentNotFound
	default:
		s.logger.Error("%s: appointment id=%d failed: %v", op, id, err)
		return fmt.Errorf("%w: %s - %v", ErrInternal, op, err)
	}
}

func applyChanges(a *domain.Appointment, req *models.RescheduleRequest) {
	a.StartAt = ptr.Deref(req.StartAt, a.StartAt)
	a.EmployeeID = ptr.Deref(req.EmployeeID, a.EmployeeID)
	a.DurationMinutes = ptr.Deref(req.DurationMinutes, a.DurationMinutes)
	if req.ServiceName != nil {
		a.ServiceName = strings.TrimSpace(*req.ServiceName)
	}
	if req.Notes != nil {
		a.Notes = req.Notes
	}
}

// timeChanged true, если изменилось что-то, влияющее на занятость мастера
func timeChanged(before, after *domain.Appointment) bool {
	return !before.StartAt.Equal(after.StartAt) ||
		before.EmployeeID != after.EmployeeID ||
		before.DurationMinutes != after.DurationMinutes
}

func validateReschedule(req *models.RescheduleRequest) error {
	if req.EmployeeID != nil && *req.EmployeeID <= 0 {
		return fmt.Errorf("%w: employee_id must be positive", ErrInvalidInput)
	}
	if req.DurationMinutes != nil &&
		(*req.DurationMinutes < domain.MinDurationMinutes || *req.DurationMinutes > domain.MaxDurationMinutes) {
		return fmt.Errorf("%w: duration must be in [%d, %d] minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if req.ServiceName != nil {
		if name := strings.TrimSpace(*req.ServiceName); name == "" || len(name) > domain.MaxServiceNameLength {
			return fmt.Errorf("%w: service_name must be 1..%d chars", ErrInvalidInput, domain.MaxServiceNameLength)
		}
	}
	if req.StartAt != nil && req.StartAt.IsZero() {
		return fmt.Errorf("%w: start is zero", ErrInvalidInput)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d chars", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}
