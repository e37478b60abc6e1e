package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

// Provider операции внешнего календаря
type Provider interface {
	CreateEvent(ctx context.Context, appointment *domain.Appointment) (string, error)
	UpdateEvent(ctx context.Context, appointment *domain.Appointment) error
	ListBlockedRanges(ctx context.Context, employeeID int64, date time.Time) ([]domain.Interval, error)
}

// CachedClient кэширует занятые интервалы мастера на день (LRU + TTL)
// Бот запрашивает слоты на каждый шаг выбора даты, провайдер календаря медленный
type CachedClient struct {
	inner Provider
	cache *expirable.LRU[string, []domain.Interval]
	loc   *time.Location
}

// NewCachedClient создает кэширующую обертку над клиентом календаря
func NewCachedClient(inner Provider, size int, ttl time.Duration, loc *time.Location) *CachedClient {
	return &CachedClient{
		inner: inner,
		cache: expirable.NewLRU[string, []domain.Interval](size, nil, ttl),
		loc:   loc,
	}
}

// CreateEvent создает событие и сбрасывает кэш дня записи
func (c *CachedClient) CreateEvent(ctx context.Context, appointment *domain.Appointment) (string, error) {
	defer c.invalidate(appointment.EmployeeID, appointment.StartAt)
	return c.inner.CreateEvent(ctx, appointment)
}

// UpdateEvent обновляет событие и сбрасывает весь кэш
// Прежние день и мастер записи здесь неизвестны, а перенос освобождает именно их
func (c *CachedClient) UpdateEvent(ctx context.Context, appointment *domain.Appointment) error {
	defer c.cache.Purge()
	return c.inner.UpdateEvent(ctx, appointment)
}

// ListBlockedRanges отдает интервалы из кэша, ошибки провайдера не кэшируются
func (c *CachedClient) ListBlockedRanges(ctx context.Context, employeeID int64, date time.Time) ([]domain.Interval, error) {
	key := c.key(employeeID, date)
	if blocks, ok := c.cache.Get(key); ok {
		return blocks, nil
	}

	blocks, err := c.inner.ListBlockedRanges(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, blocks)
	return blocks, nil
}

func (c *CachedClient) invalidate(employeeID int64, at time.Time) {
	c.cache.Remove(c.key(employeeID, at))
}

func (c *CachedClient) key(employeeID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", employeeID, date.In(c.loc).Format(domain.DateFormat))
}

// Disabled используется, когда внешний календарь не настроен
type Disabled struct{}

func (Disabled) CreateEvent(context.Context, *domain.Appointment) (string, error) {
	return "", nil
}

func (Disabled) UpdateEvent(context.Context, *domain.Appointment) error {
	return nil
}

func (Disabled) ListBlockedRanges(context.Context, int64, time.Time) ([]domain.Interval, error) {
	return nil, nil
}
