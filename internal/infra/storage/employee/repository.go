package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Repository справочник мастеров и их рабочих часов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мастеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает мастера вместе с недельным расписанием
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "is_active").
		From("employees").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	var employee domain.Employee
	err = executor.QueryRowContext(ctx, query, args...).Scan(&employee.ID, &employee.Name, &employee.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan employee: %w", ErrScanRow, err)
	}

	schedules, err := r.loadSchedules(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	employee.WorkingHours = schedules[id]

	return &employee, nil
}

// ListActive получает активных мастеров, упорядоченных по ID (порядок нумерации в боте)
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "is_active").
		From("employees").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		var employee domain.Employee
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.IsActive); err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %w", ErrScanRow, err)
		}
		employees = append(employees, &employee)
		ids = append(ids, employee.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %w", ErrScanRow, err)
	}

	if len(ids) == 0 {
		return employees, nil
	}

	schedules, err := r.loadSchedules(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, employee := range employees {
		employee.WorkingHours = schedules[employee.ID]
	}

	return employees, nil
}

func (r *Repository) loadSchedules(ctx context.Context, employeeIDs []int64) (map[int64]domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("employee_id", "weekday", "start_time", "end_time").
		From("employee_working_hours").
		Where(squirrel.Eq{"employee_id": employeeIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadSchedules - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadSchedules - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make(map[int64]domain.WeeklySchedule, len(employeeIDs))
	for rows.Next() {
		var (
			employeeID int64
			weekday    int
			start, end types.TimeString
		)
		if err := rows.Scan(&employeeID, &weekday, &start, &end); err != nil {
			return nil, fmt.Errorf("%w: loadSchedules - scan row: %w", ErrScanRow, err)
		}

		schedule := schedules[employeeID]
		schedule.Set(time.Weekday(weekday), domain.TimeRange{Start: start, End: end})
		schedules[employeeID] = schedule
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadSchedules - rows error: %w", ErrScanRow, err)
	}

	return schedules, nil
}
