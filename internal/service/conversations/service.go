package conversations

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInternal возвращается при ошибках хранилища
var ErrInternal = errors.New("conversations: internal error")

// Service обслуживание диалогов бота
type Service struct {
	repo         ConversationRepository
	idleTimeout  time.Duration
	metrics      MetricsRecorder
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса диалогов
func NewService(repo ConversationRepository, idleTimeout time.Duration, metrics MetricsRecorder, logger Logger) *Service {
	return &Service{
		repo:         repo,
		idleTimeout:  idleTimeout,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// ExpireIdle закрывает активные диалоги без активности дольше idleTimeout
// Диалог переходит в COMPLETADO, версия увеличивается, поэтому параллельный шаг бота
// с устаревшей версией получит конфликт и не перезапишет закрытие
func (s *Service) ExpireIdle(ctx context.Context) (int64, error) {
	cutoff := s.timeProvider.Now().Add(-s.idleTimeout)

	n, err := s.repo.DeactivateIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("ExpireIdle: failed to deactivate idle conversations: %v", err)
		return 0, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if n > 0 {
		s.logger.Info("ExpireIdle: closed %d idle conversations (cutoff=%s)", n, cutoff.Format(time.RFC3339))
		if s.metrics != nil {
			s.metrics.AddConversationsExpired(n)
		}
	}
	return n, nil
}
