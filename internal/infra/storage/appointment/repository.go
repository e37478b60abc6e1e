package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/psqlbuilder"
)

const (
	tableName = "appointments"

	uniqueViolation        = "23505"
	trackingCodeConstraint = "appointments_tracking_code_key"
)

var columns = []string{
	"a.id",
	"a.tracking_code",
	"a.client_id",
	"a.employee_id",
	"a.service_name",
	"a.start_at",
	"a.duration_minutes",
	"a.origin",
	"a.status",
	"a.cancellation_reason",
	"a.notes",
	"a.calendar_event_id",
	"a.created_at",
	"a.updated_at",
}

// Repository репозиторий для работы с записями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Проверка пересечений и вставка должны идти в одной serializable транзакции
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"tracking_code",
			"client_id",
			"employee_id",
			"service_name",
			"start_at",
			"duration_minutes",
			"origin",
			"status",
			"cancellation_reason",
			"notes",
			"calendar_event_id",
		).
		Values(
			appointment.TrackingCode,
			appointment.ClientID,
			appointment.EmployeeID,
			appointment.ServiceName,
			appointment.StartAt,
			appointment.DurationMinutes,
			appointment.Origin,
			appointment.Status,
			appointment.CancellationReason,
			appointment.Notes,
			appointment.CalendarEventID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == trackingCodeConstraint {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTrackingCode, appointment.TrackingCode)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return appointment, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"a.id": id})
}

// GetByTrackingCode получает запись по коду отслеживания
func (r *Repository) GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByTrackingCode", squirrel.Eq{"a.tracking_code": code})
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName + " a").
		Where(where)

	// Внутри транзакции блокируем строку, чтобы статус не поменялся параллельно
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %w", ErrScanRow, op, err)
	}

	return appointment, nil
}

// ListByEmployee получает записи мастера с началом в полуинтервале [from, to)
// Отмененные записи не возвращаются, если includeCancelled = false.
//
// Внутри транзакции строки блокируются FOR UPDATE: это проверка пересечений перед вставкой,
// параллельная запись на тот же день будет ждать
func (r *Repository) ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time, includeCancelled bool) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName+" a").
		Where(squirrel.Eq{"a.employee_id": employeeID}).
		Where(squirrel.GtOrEq{"a.start_at": from}).
		Where(squirrel.Lt{"a.start_at": to}).
		OrderBy("a.start_at ASC")

	if !includeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"a.status": domain.StatusCancelled})
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmployee - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmployee - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListByClientPhone получает историю записей клиента по телефону (сначала новые)
func (r *Repository) ListByClientPhone(ctx context.Context, phone string) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName+" a").
		Join("clients c ON c.id = a.client_id").
		Where(squirrel.Eq{"c.phone": phone}).
		OrderBy("a.start_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByClientPhone - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByClientPhone - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// Update сохраняет изменяемые поля записи
func (r *Repository) Update(ctx context.Context, appointment *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("employee_id", appointment.EmployeeID).
		Set("service_name", appointment.ServiceName).
		Set("start_at", appointment.StartAt).
		Set("duration_minutes", appointment.DurationMinutes).
		Set("status", appointment.Status).
		Set("cancellation_reason", appointment.CancellationReason).
		Set("notes", appointment.Notes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": appointment.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&appointment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return nil
}

// SetCalendarEventID сохраняет идентификатор события во внешнем календаре
func (r *Repository) SetCalendarEventID(ctx context.Context, id int64, eventID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("calendar_event_id", eventID).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetCalendarEventID - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetCalendarEventID - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetCalendarEventID - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// Delete удаляет запись (физическое удаление)
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appointment domain.Appointment

	err := row.Scan(
		&appointment.ID,
		&appointment.TrackingCode,
		&appointment.ClientID,
		&appointment.EmployeeID,
		&appointment.ServiceName,
		&appointment.StartAt,
		&appointment.DurationMinutes,
		&appointment.Origin,
		&appointment.Status,
		&appointment.CancellationReason,
		&appointment.Notes,
		&appointment.CalendarEventID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &appointment, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appointment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %w", ErrScanRow, err)
	}

	return appointments, nil
}
