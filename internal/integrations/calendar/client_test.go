package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
	"github.com/m04kA/SMC-BarberService/pkg/ptr"
)

func testAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:              7,
		TrackingCode:    "BB-260302-ABCDE",
		EmployeeID:      3,
		ServiceName:     "Corte clásico",
		StartAt:         time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
	}
}

func TestClient_CreateEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		assert.Equal(t, int64(7), ev.AppointmentID)
		assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateEventResponse{ID: "evt-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, time.UTC, logger.NewNop())

	id, err := c.CreateEvent(context.Background(), testAppointment())
	require.NoError(t, err)
	assert.Equal(t, "evt-1", id)
}

func TestClient_UpdateEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		if r.URL.Path == "/events/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.UTC, logger.NewNop())

	a := testAppointment()
	assert.ErrorIs(t, c.UpdateEvent(context.Background(), a), ErrNoEvent)

	a.CalendarEventID = ptr.Ptr("evt-1")
	assert.NoError(t, c.UpdateEvent(context.Background(), a))

	a.CalendarEventID = ptr.Ptr("missing")
	assert.ErrorIs(t, c.UpdateEvent(context.Background(), a), ErrEventNotFound)
}

func TestClient_ListBlockedRanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/employees/3/blocks", r.URL.Path)
		assert.Equal(t, "2026-03-02", r.URL.Query().Get("date"))

		_, _ = w.Write([]byte(`[
			{"start":"2026-03-02T15:00:00Z","end":"2026-03-02T16:00:00Z"},
			{"start":"2026-03-02T17:00:00Z","end":"2026-03-02T17:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.UTC, logger.NewNop())

	blocks, err := c.ListBlockedRanges(context.Background(), 3, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 15, blocks[0].Start.Hour())
}

func TestClient_ListBlockedRanges_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"code":502,"message":"upstream down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, time.UTC, logger.NewNop())

	_, err := c.ListBlockedRanges(context.Background(), 3, time.Now())
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestCachedClient(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(CreateEventResponse{ID: "evt-2"})
			return
		}
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewCachedClient(NewClient(srv.URL, "", time.Second, time.UTC, logger.NewNop()), 16, time.Minute, time.UTC)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := c.ListBlockedRanges(ctx, 3, day)
	require.NoError(t, err)
	_, err = c.ListBlockedRanges(ctx, 3, day)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = c.CreateEvent(ctx, testAppointment())
	require.NoError(t, err)

	_, err = c.ListBlockedRanges(ctx, 3, day)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedClient_UpdateDropsPreviousDay(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewCachedClient(NewClient(srv.URL, "", time.Second, time.UTC, logger.NewNop()), 16, time.Minute, time.UTC)
	ctx := context.Background()
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := c.ListBlockedRanges(ctx, 3, monday)
	require.NoError(t, err)

	// Запись перенесена с понедельника на вторник
	moved := testAppointment()
	moved.StartAt = moved.StartAt.AddDate(0, 0, 1)
	moved.CalendarEventID = ptr.Ptr("evt-1")
	require.NoError(t, c.UpdateEvent(ctx, moved))

	_, err = c.ListBlockedRanges(ctx, 3, monday)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
