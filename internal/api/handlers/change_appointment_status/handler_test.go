package change_appointment_status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
	"github.com/m04kA/SMC-BarberService/internal/service/overlap"
	"github.com/m04kA/SMC-BarberService/pkg/besteffort"
	"github.com/m04kA/SMC-BarberService/pkg/logger"
)

type serviceMock struct{ mock.Mock }

func (m *serviceMock) ChangeStatus(ctx context.Context, id int64, req *models.ChangeStatusRequest) (*appointments.Result, error) {
	args := m.Called(ctx, id, req)
	if r, ok := args.Get(0).(*appointments.Result); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func patch(h *Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"appointmentId": id})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Cancel(t *testing.T) {
	reason := "cliente enfermo"
	svc := &serviceMock{}
	svc.On("ChangeStatus", mock.Anything, int64(5), &models.ChangeStatusRequest{
		Status:             "CANCELLED",
		CancellationReason: &reason,
	}).Return(&appointments.Result{
		Appointment: &domain.Appointment{
			ID:                 5,
			Status:             domain.StatusCancelled,
			CancellationReason: &reason,
			StartAt:            time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
			DurationMinutes:    30,
		},
		SideEffects: []besteffort.Result{
			{Operation: appointments.OpCalendarUpdate},
			{Operation: appointments.OpLedgerVoid},
		},
	}, nil)

	h := NewHandler(svc, time.UTC, logger.NewNop())
	rec := patch(h, "5", `{"status":" Cancelled ","cancellationReason":"cliente enfermo"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Appointment.Status)
	require.NotNil(t, resp.Appointment.CancellationReason)
	assert.Equal(t, reason, *resp.Appointment.CancellationReason)
	assert.Len(t, resp.SideEffects, 2)
}

func TestHandle_InvalidRequest(t *testing.T) {
	svc := &serviceMock{}
	h := NewHandler(svc, time.UTC, logger.NewNop())

	assert.Equal(t, http.StatusBadRequest, patch(h, "abc", `{"status":"confirmed"}`).Code)
	assert.Equal(t, http.StatusBadRequest, patch(h, "5", `{"status":`).Code)
	svc.AssertNotCalled(t, "ChangeStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", appointments.ErrAppointmentNotFound, http.StatusNotFound},
		{"completed", appointments.ErrImmutableState, http.StatusConflict},
		{"illegal", appointments.ErrIllegalTransition, http.StatusConflict},
		{"missing reason", appointments.ErrMissingReason, http.StatusBadRequest},
		{"revival overlaps", fmt.Errorf("%w: %w", appointments.ErrNotAvailable, overlap.ErrDoubleBooking), http.StatusConflict},
		{"revival outside hours", fmt.Errorf("%w: %w", appointments.ErrValidation, overlap.ErrOutsideWorkingHours), http.StatusBadRequest},
		{"unknown status", fmt.Errorf("%w: unknown status", appointments.ErrInvalidInput), http.StatusBadRequest},
		{"internal", appointments.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &serviceMock{}
			svc.On("ChangeStatus", mock.Anything, int64(5), mock.Anything).Return(nil, tt.err)
			h := NewHandler(svc, time.UTC, logger.NewNop())

			rec := patch(h, "5", `{"status":"confirmed"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
