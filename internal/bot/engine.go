package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	conversationRepo "github.com/m04kA/SMC-BarberService/internal/infra/storage/conversation"
	"github.com/m04kA/SMC-BarberService/pkg/phone"
)

const (
	defaultLockWait = 5 * time.Second
	lockKeyPrefix   = "conversation:"

	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeConflict = "conflict"
)

// Engine конечный автомат диалога записи/отмены через мессенджер
//
// Каждое сообщение обрабатывается как один атомарный шаг под блокировкой номера:
// чтение диалога, вычисление ответа, запись нового состояния с проверкой версии, отправка ответа.
// При любой ошибке шага сохраненный диалог не меняется, пользователь получает общее сообщение
type Engine struct {
	deps         Deps
	settings     Settings
	timeProvider TimeProvider
}

// NewEngine создает новый движок
func NewEngine(deps Deps, settings Settings) *Engine {
	if settings.LockWait <= 0 {
		settings.LockWait = defaultLockWait
	}
	if settings.DefaultSlotMinutes <= 0 {
		settings.DefaultSlotMinutes = domain.DefaultSlotDurationMinutes
	}
	if settings.DefaultServiceName == "" {
		settings.DefaultServiceName = domain.DefaultServiceName
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &Engine{
		deps:         deps,
		settings:     settings,
		timeProvider: &RealTimeProvider{},
	}
}

// WithTimeProvider подменяет источник текущего времени
func (e *Engine) WithTimeProvider(tp TimeProvider) *Engine {
	e.timeProvider = tp
	return e
}

// HandleMessage обрабатывает одно входящее сообщение
func (e *Engine) HandleMessage(ctx context.Context, msg InboundMessage) error {
	normalized, err := phone.Normalize(msg.Phone, e.settings.PhoneRegion)
	if err != nil {
		e.deps.Logger.Warn("HandleMessage: invalid sender %q: %v", msg.Phone, err)
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, e.settings.LockWait)
	unlock, err := e.deps.Locker.Lock(lockCtx, lockKeyPrefix+normalized)
	cancel()
	if err != nil {
		e.deps.Logger.Error("HandleMessage: failed to lock phone=%s: %v", normalized, err)
		e.send(ctx, normalized, msgTechnicalDifficulty)
		return fmt.Errorf("%w: lock: %v", ErrInternal, err)
	}
	defer unlock()

	if msg.MessageID != "" {
		e.deps.SideEffects.Do(ctx, "whatsapp_mark_read", func(ctx context.Context) error {
			return e.deps.Messenger.MarkRead(ctx, msg.MessageID)
		})
	}

	now := e.timeProvider.Now()
	current, err := e.load(ctx, normalized)
	if err != nil {
		e.deps.Logger.Error("HandleMessage: failed to load conversation phone=%s: %v", normalized, err)
		e.send(ctx, normalized, msgTechnicalDifficulty)
		return fmt.Errorf("%w: load: %v", ErrInternal, err)
	}

	t := &turn{phone: normalized, text: msg.Text, now: now, conv: e.fresh(normalized)}
	if current != nil && !current.IsIdle(now, e.settings.IdleTimeout) {
		next := *current
		t.conv = &next
	}
	stateBefore := t.conv.State

	if err := e.step(ctx, t); err != nil {
		e.deps.Logger.Error("HandleMessage: step failed phone=%s state=%s: %v", normalized, stateBefore, err)
		e.record(stateBefore, outcomeError)
		e.send(ctx, normalized, msgTechnicalDifficulty)
		return err
	}

	t.conv.LastActivityAt = now
	err = e.persist(ctx, current, t.conv)
	if err != nil && t.committed {
		// Запись уже создана: пользователь должен получить код, даже если диалог сохранить не удалось
		e.deps.Logger.Warn("HandleMessage: appointment committed but conversation save failed phone=%s: %v", normalized, err)
		if rerr := e.persistCommitted(ctx, t.conv); rerr != nil {
			e.deps.Logger.Error("HandleMessage: retry save failed phone=%s: %v", normalized, rerr)
			e.record(stateBefore, outcomeError)
			for _, r := range t.replies {
				e.send(ctx, normalized, r)
			}
			return rerr
		}
		err = nil
	}
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, ErrConversationConflict) {
			outcome = outcomeConflict
		}
		e.deps.Logger.Warn("HandleMessage: failed to save conversation phone=%s: %v", normalized, err)
		e.record(stateBefore, outcome)
		e.send(ctx, normalized, msgTechnicalDifficulty)
		return err
	}

	e.deps.Logger.Info("HandleMessage: phone=%s %s -> %s", normalized, stateBefore, t.conv.State)
	e.record(stateBefore, outcomeOK)

	for _, r := range t.replies {
		e.send(ctx, normalized, r)
	}
	return nil
}

// load возвращает активный диалог номера или nil
func (e *Engine) load(ctx context.Context, phone string) (*domain.Conversation, error) {
	conv, err := e.deps.Conversations.GetActiveByPhone(ctx, phone)
	if errors.Is(err, conversationRepo.ErrConversationNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (e *Engine) fresh(phone string) *domain.Conversation {
	return &domain.Conversation{
		Phone:    phone,
		State:    domain.StateInitial,
		IsActive: true,
	}
}

// persist сохраняет результат шага
// Если прежний диалог простаивал, он закрывается и создается новый (в одной транзакции)
func (e *Engine) persist(ctx context.Context, previous, next *domain.Conversation) error {
	err := e.deps.TxManager.Do(ctx, func(txCtx context.Context) error {
		if next.ID != 0 {
			return e.deps.Conversations.Save(txCtx, next)
		}

		if previous != nil {
			expired := *previous
			expired.State = domain.StateCompleted
			expired.IsActive = false
			if err := e.deps.Conversations.Save(txCtx, &expired); err != nil {
				return err
			}
		}

		if !next.IsActive {
			// Диалог завершился на первом же шаге, хранить нечего
			return nil
		}
		_, err := e.deps.Conversations.Create(txCtx, next)
		return err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, conversationRepo.ErrVersionConflict),
		errors.Is(err, conversationRepo.ErrActiveConversationExists):
		return fmt.Errorf("%w: %v", ErrConversationConflict, err)
	default:
		return fmt.Errorf("%w: save: %v", ErrInternal, err)
	}
}

// persistCommitted повторно сохраняет шаг поверх актуальной версии диалога
// Нужен только после созданной записи: откатить ее нельзя, поэтому догоняем состояние
func (e *Engine) persistCommitted(ctx context.Context, next *domain.Conversation) error {
	latest, err := e.load(ctx, next.Phone)
	if err != nil {
		return fmt.Errorf("%w: reload: %v", ErrInternal, err)
	}

	merged := *next
	if latest == nil {
		// Диалог успели закрыть, продолжаем в новом
		merged.ID = 0
		merged.Version = 0
	} else {
		merged.ID = latest.ID
		merged.Version = latest.Version
	}
	return e.persist(ctx, nil, &merged)
}

// step выполняет обработчик текущего состояния; паника превращается в ошибку
func (e *Engine) step(ctx context.Context, t *turn) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", ErrInternal, p, debug.Stack())
		}
	}()

	switch t.conv.State {
	case domain.StateInitial:
		return e.onInitial(ctx, t)
	case domain.StateAwaitingService:
		return e.onAwaitingService(ctx, t)
	case domain.StateAwaitingBarber:
		return e.onAwaitingBarber(ctx, t)
	case domain.StateAwaitingName:
		return e.onAwaitingName(ctx, t)
	case domain.StateAwaitingDate:
		return e.onAwaitingDate(ctx, t)
	case domain.StateAwaitingTime:
		return e.onAwaitingTime(ctx, t)
	case domain.StateAwaitingTrackingCode:
		return e.onAwaitingTrackingCode(ctx, t)
	case domain.StateAwaitingCancelConfirm:
		return e.onAwaitingCancelConfirm(ctx, t)
	default:
		// Поврежденное или устаревшее состояние: начинаем сначала
		e.deps.Logger.Warn("HandleMessage: unknown state %q for phone=%s, resetting", t.conv.State, t.phone)
		t.resetContext()
		t.moveTo(domain.StateInitial)
		t.reply(msgInvalidOption)
		t.reply(welcomeMessage(e.settings.BusinessName))
		return nil
	}
}

func (e *Engine) send(ctx context.Context, to, body string) {
	e.deps.SideEffects.Do(ctx, "whatsapp_send_text", func(ctx context.Context) error {
		return e.deps.Messenger.SendText(ctx, to, body)
	})
}

func (e *Engine) record(state domain.ConversationState, outcome string) {
	if e.deps.Metrics != nil {
		e.deps.Metrics.IncBotMessage(string(state), outcome)
	}
}
