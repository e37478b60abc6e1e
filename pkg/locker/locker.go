package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrLockTimeout возвращается, когда блокировку не удалось получить до истечения контекста
var ErrLockTimeout = errors.New("locker: lock wait timeout")

// UnlockFunc освобождает блокировку. Повторный вызов безопасен
type UnlockFunc func()

// MemoryLocker блокировки по ключу внутри одного процесса
// Используется, когда Redis отключен (один инстанс сервиса)
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*memoryLock
}

type memoryLock struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker создает новый MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*memoryLock)}
}

// Lock блокирует ключ, ожидая освобождения не дольше, чем живет ctx
func (l *MemoryLocker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &memoryLock{sem: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, lock)
		return nil, fmt.Errorf("%w: key=%s: %v", ErrLockTimeout, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.release(key, lock)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, lock *memoryLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}
