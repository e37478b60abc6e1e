package get_client_appointments

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

type AppointmentService interface {
	ListByClientPhone(ctx context.Context, rawPhone string) ([]*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
