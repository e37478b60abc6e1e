package get_employee_appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

type AppointmentService interface {
	ListByEmployee(ctx context.Context, employeeID int64, from, to time.Time) ([]*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
