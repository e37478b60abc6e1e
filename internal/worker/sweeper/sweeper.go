package sweeper

import (
	"context"
	"time"
)

// Expirer закрывает простаивающие диалоги
type Expirer interface {
	ExpireIdle(ctx context.Context) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
}

const defaultRunTimeout = 10 * time.Second

// Sweeper периодически закрывает простаивающие диалоги
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   Logger
}

// New создает новый sweeper
func New(expirer Expirer, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
	}
}

// Run выполняет проход каждые interval до отмены ctx
// Ошибка отдельного прохода логируется и не останавливает цикл
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Warn("Sweeper: disabled (interval=%s)", s.interval)
		return nil
	}

	s.logger.Info("Sweeper: started, interval=%s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	if _, err := s.expirer.ExpireIdle(runCtx); err != nil {
		s.logger.Warn("Sweeper: pass failed: %v", err)
	}
}
