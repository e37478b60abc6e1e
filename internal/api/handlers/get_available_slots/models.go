package get_available_slots

import (
	"errors"
	"strconv"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BarberService/internal/usecase/get_available_slots"
)

var errInvalidDuration = errors.New("invalid duration")

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string   `json:"date"`
	EmployeeID      int64    `json:"employeeId"`
	DurationMinutes int      `json:"durationMinutes"`
	Slots           []string `json:"slots"` // ["09:00", "09:30", ...]
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		EmployeeID:      resp.EmployeeID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// Дата разбирается в часовом поясе заведения; пустая длительность заменяется значением по умолчанию
func ToUseCaseRequest(employeeID int64, dateStr, durationStr string, defaultDuration int, loc *time.Location) (*getAvailableSlots.Request, error) {
	date, err := time.ParseInLocation(domain.DateFormat, dateStr, loc)
	if err != nil {
		return nil, err
	}

	duration := defaultDuration
	if durationStr != "" {
		duration, err = strconv.Atoi(durationStr)
		if err != nil {
			return nil, errInvalidDuration
		}
	}

	return &getAvailableSlots.Request{
		EmployeeID:      employeeID,
		Date:            date,
		DurationMinutes: duration,
	}, nil
}
