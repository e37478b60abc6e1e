package besteffort

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	warnings []string
}

func (l *captureLogger) Warn(format string, v ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

type countingRecorder struct {
	ops []string
}

func (r *countingRecorder) IncSideEffectFailure(operation string) {
	r.ops = append(r.ops, operation)
}

func TestDispatcher_Success(t *testing.T) {
	log := &captureLogger{}
	rec := &countingRecorder{}
	d := NewDispatcher(log, time.Second, rec)

	res := d.Do(context.Background(), "calendar.create_event", func(ctx context.Context) error {
		return nil
	})

	assert.True(t, res.OK())
	assert.Empty(t, log.warnings)
	assert.Empty(t, rec.ops)
}

func TestDispatcher_FailureIsLoggedNotPropagated(t *testing.T) {
	log := &captureLogger{}
	rec := &countingRecorder{}
	d := NewDispatcher(log, time.Second, rec)

	res := d.Do(context.Background(), "ledger.void", func(ctx context.Context) error {
		return errors.New("ledger down")
	})

	assert.True(t, res.Failed())
	assert.Equal(t, "ledger.void", res.Operation)
	assert.Len(t, log.warnings, 1)
	assert.Contains(t, log.warnings[0], "ledger down")
	assert.Equal(t, []string{"ledger.void"}, rec.ops)
}

func TestDispatcher_PanicRecovered(t *testing.T) {
	d := NewDispatcher(&captureLogger{}, time.Second, nil)

	res := d.Do(context.Background(), "calendar.update_event", func(ctx context.Context) error {
		panic("boom")
	})

	assert.True(t, res.Failed())
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestDispatcher_Timeout(t *testing.T) {
	d := NewDispatcher(&captureLogger{}, 20*time.Millisecond, nil)

	res := d.Do(context.Background(), "calendar.create_event", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestDispatcher_ParentCancellationIgnored(t *testing.T) {
	d := NewDispatcher(&captureLogger{}, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := d.Do(ctx, "ledger.create", func(ctx context.Context) error {
		return ctx.Err()
	})

	assert.True(t, res.OK())
}
