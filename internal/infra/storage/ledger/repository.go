package ledger

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/psqlbuilder"
)

const tableName = "ledger_entries"

// Repository журнал ожидающих оплат
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория журнала
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreatePendingEntry создает ожидающую оплату для записи
// Повторный вызов для той же записи ничего не меняет
func (r *Repository) CreatePendingEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("appointment_id", "amount", "status", "description").
		Values(entry.AppointmentID, entry.Amount, domain.LedgerPending, entry.Description).
		Suffix("ON CONFLICT (appointment_id) WHERE appointment_id IS NOT NULL DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreatePendingEntry - build insert query: %w", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreatePendingEntry - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// VoidPendingEntry аннулирует ожидающую оплату записи
// Оплаченные и уже аннулированные строки не трогаются
func (r *Repository) VoidPendingEntry(ctx context.Context, appointmentID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", domain.LedgerVoid).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"appointment_id": appointmentID, "status": domain.LedgerPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: VoidPendingEntry - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: VoidPendingEntry - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: VoidPendingEntry - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}
