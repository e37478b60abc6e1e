package change_appointment_status

import (
	"strings"

	"github.com/m04kA/SMC-BarberService/internal/service/appointments/models"
)

// ChangeStatusRequest HTTP request model
type ChangeStatusRequest struct {
	Status             string  `json:"status"` // PENDING | CONFIRMED | CANCELLED | COMPLETED (регистр не важен)
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *ChangeStatusRequest) ToServiceRequest() *models.ChangeStatusRequest {
	return &models.ChangeStatusRequest{
		Status:             strings.ToUpper(strings.TrimSpace(r.Status)),
		CancellationReason: r.CancellationReason,
	}
}
