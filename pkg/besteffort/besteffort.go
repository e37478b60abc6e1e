package besteffort

import (
	"context"
	"fmt"
	"time"
)

const defaultTimeout = 3 * time.Second

// Result итог побочного действия. Вызывающий код может его проигнорировать:
// ошибка уже залогирована и посчитана в метриках
type Result struct {
	Operation string
	Err       error
}

// OK returns true if the side effect succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Failed returns true if the side effect failed
func (r Result) Failed() bool {
	return r.Err != nil
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// FailureRecorder получатель метрик неудачных действий (может быть nil)
type FailureRecorder interface {
	IncSideEffectFailure(operation string)
}

// Dispatcher выполняет побочные действия с ограничением по времени
// Ошибки и паники не пробрасываются наружу, а превращаются в Result
type Dispatcher struct {
	logger   Logger
	timeout  time.Duration
	recorder FailureRecorder
}

// NewDispatcher создает новый диспетчер
func NewDispatcher(logger Logger, timeout time.Duration, recorder FailureRecorder) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		logger:   logger,
		timeout:  timeout,
		recorder: recorder,
	}
}

// Do выполняет fn. Отмена родительского контекста не прерывает действие, действует только собственный таймаут
func (d *Dispatcher) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) (result Result) {
	result.Operation = operation

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			result.Err = fmt.Errorf("panic: %v", p)
		}
		if result.Err != nil {
			d.logger.Warn("best-effort %s failed: %v", operation, result.Err)
			if d.recorder != nil {
				d.recorder.IncSideEffectFailure(operation)
			}
		}
	}()

	result.Err = fn(callCtx)
	return result
}
