package calendar

import "time"

// Event событие во внешнем календаре
type Event struct {
	EmployeeID    int64     `json:"employee_id"`
	AppointmentID int64     `json:"appointment_id"`
	TrackingCode  string    `json:"tracking_code"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// CreateEventResponse ответ на создание события
type CreateEventResponse struct {
	ID string `json:"id"`
}

// BlockedRange занятый интервал из календаря мастера
type BlockedRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ErrorResponse модель ошибки провайдера
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
