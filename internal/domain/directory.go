package domain

import "time"

// Employee мастер (барбер)
type Employee struct {
	ID           int64
	Name         string
	IsActive     bool
	WorkingHours WeeklySchedule
}

// Client клиент, идентифицируется по телефону в формате E.164
type Client struct {
	ID        int64
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Service услуга из прайс-листа
type Service struct {
	ID              int64
	Name            string
	Price           float64
	DurationMinutes int
	IsActive        bool
}
