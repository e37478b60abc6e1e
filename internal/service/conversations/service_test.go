package conversations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/pkg/logger"
)

type fakeRepo struct {
	cutoff time.Time
	n      int64
	err    error
}

func (r *fakeRepo) DeactivateIdle(_ context.Context, cutoff time.Time) (int64, error) {
	r.cutoff = cutoff
	return r.n, r.err
}

type counter struct{ total int64 }

func (c *counter) AddConversationsExpired(n int64) { c.total += n }

type fixedTime time.Time

func (f fixedTime) Now() time.Time { return time.Time(f) }

func TestExpireIdle(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := &fakeRepo{n: 3}
	metrics := &counter{}
	svc := NewService(repo, 5*time.Minute, metrics, logger.NewNop()).WithTimeProvider(fixedTime(now))

	n, err := svc.ExpireIdle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, now.Add(-5*time.Minute), repo.cutoff)
	assert.Equal(t, int64(3), metrics.total)
}

func TestExpireIdle_NothingToClose(t *testing.T) {
	metrics := &counter{}
	svc := NewService(&fakeRepo{}, time.Minute, metrics, logger.NewNop())

	n, err := svc.ExpireIdle(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, metrics.total)
}

func TestExpireIdle_RepositoryError(t *testing.T) {
	svc := NewService(&fakeRepo{err: errors.New("db down")}, time.Minute, nil, logger.NewNop())

	_, err := svc.ExpireIdle(context.Background())

	assert.ErrorIs(t, err, ErrInternal)
}
