package domain

import (
	"time"
)

// AppointmentStatus статус записи
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// IsValid returns true if the status is one of the known values
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Origin канал, через который создана запись
type Origin string

const (
	OriginManual         Origin = "manual"
	OriginConversational Origin = "conversational"
)

// IsValid returns true if the origin is one of the known values
func (o Origin) IsValid() bool {
	return o == OriginManual || o == OriginConversational
}

// InitialStatus начальный статус записи в зависимости от канала
func (o Origin) InitialStatus() AppointmentStatus {
	if o == OriginConversational {
		return StatusConfirmed
	}
	return StatusPending
}

// Appointment запись клиента к мастеру
type Appointment struct {
	ID              int64
	TrackingCode    string
	ClientID        int64
	EmployeeID      int64
	ServiceName     string
	StartAt         time.Time
	DurationMinutes int
	Origin          Origin
	Status          AppointmentStatus

	CancellationReason *string
	Notes              *string
	CalendarEventID    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndAt момент окончания записи
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Interval полуоткрытый интервал [StartAt, EndAt)
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartAt, End: a.EndAt()}
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// IsCompleted returns true if the appointment is completed (terminal)
func (a *Appointment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

// OccupiesTime записи в любом статусе, кроме отмененного, занимают время мастера
func (a *Appointment) OccupiesTime() bool {
	return !a.IsCancelled()
}
