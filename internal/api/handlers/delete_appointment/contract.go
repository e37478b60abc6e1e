package delete_appointment

import (
	"context"

	"github.com/m04kA/SMC-BarberService/internal/service/appointments"
)

type AppointmentService interface {
	Delete(ctx context.Context, id int64) (*appointments.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
