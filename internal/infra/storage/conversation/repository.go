package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
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
	tableName       = "conversations"
	uniqueViolation = "23505"
)

var columns = []string{
	"id",
	"phone",
	"client_id",
	"state",
	"context",
	"is_active",
	"last_activity_at",
	"version",
	"created_at",
}

// Repository хранилище диалогов бота
//
// Все изменения строки идут через проверку версии (optimistic lock):
// шаг бота и фоновая очистка не могут перезаписать друг друга
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория диалогов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveByPhone получает активный диалог номера
func (r *Repository) GetActiveByPhone(ctx context.Context, phone string) (*domain.Conversation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"phone": phone, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByPhone - build select query: %w", ErrBuildQuery, err)
	}

	var (
		conversation domain.Conversation
		rawContext   []byte
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&conversation.ID,
		&conversation.Phone,
		&conversation.ClientID,
		&conversation.State,
		&rawContext,
		&conversation.IsActive,
		&conversation.LastActivityAt,
		&conversation.Version,
		&conversation.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByPhone - scan conversation: %w", ErrScanRow, err)
	}

	if len(rawContext) > 0 {
		if err := json.Unmarshal(rawContext, &conversation.Context); err != nil {
			return nil, fmt.Errorf("%w: GetActiveByPhone - decode context: %w", ErrScanRow, err)
		}
	}

	return &conversation, nil
}

// Create создает новый активный диалог
func (r *Repository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rawContext, err := json.Marshal(conversation.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: Create: %w", ErrEncodeContext, err)
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("phone", "client_id", "state", "context", "is_active", "last_activity_at").
		Values(conversation.Phone, conversation.ClientID, conversation.State, string(rawContext), true, conversation.LastActivityAt).
		Suffix("RETURNING id, version, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&conversation.ID,
		&conversation.Version,
		&conversation.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: phone=%s", ErrActiveConversationExists, conversation.Phone)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	conversation.IsActive = true
	return conversation, nil
}

// Save сохраняет состояние диалога, если версия строки не изменилась с момента чтения
// При успехе conversation.Version увеличивается
func (r *Repository) Save(ctx context.Context, conversation *domain.Conversation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	rawContext, err := json.Marshal(conversation.Context)
	if err != nil {
		return fmt.Errorf("%w: Save: %w", ErrEncodeContext, err)
	}

	query, args, err := psqlbuilder.Update(tableName).
		Set("client_id", conversation.ClientID).
		Set("state", conversation.State).
		Set("context", string(rawContext)).
		Set("is_active", conversation.IsActive).
		Set("last_activity_at", conversation.LastActivityAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": conversation.ID, "version": conversation.Version}).
		Suffix("RETURNING version").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Save - build update query: %w", ErrBuildQuery, err)
	}

	var version int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id=%d version=%d", ErrVersionConflict, conversation.ID, conversation.Version)
	}
	if err != nil {
		return fmt.Errorf("%w: Save - execute update: %w", ErrExecQuery, err)
	}

	conversation.Version = version
	return nil
}

// DeactivateIdle завершает активные диалоги без активности с момента cutoff
// Возвращает количество завершенных диалогов
func (r *Repository) DeactivateIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("is_active", false).
		Set("state", domain.StateCompleted).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Lt{"last_activity_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeactivateIdle - build update query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeactivateIdle - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeactivateIdle - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}
