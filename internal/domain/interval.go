package domain

import (
	"time"

	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// Interval полуоткрытый интервал времени [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval создает интервал заданной длительности
func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps a.start < b.end && b.start < a.end
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains returns true if other lies fully inside i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// OverlapsAny returns true if the interval intersects at least one of ranges
func (i Interval) OverlapsAny(ranges []Interval) bool {
	for _, r := range ranges {
		if i.Overlaps(r) {
			return true
		}
	}
	return false
}

// TimeRange интервал времени суток без даты (рабочие часы, обед)
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// Validate проверяет формат и что начало раньше конца
func (r TimeRange) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.End.Validate(); err != nil {
		return err
	}
	if !r.Start.IsBefore(r.End) {
		return ErrInvalidTimeRange
	}
	return nil
}

// On переносит интервал на конкретную дату в часовом поясе заведения
func (r TimeRange) On(date time.Time, loc *time.Location) Interval {
	return Interval{Start: r.Start.On(date, loc), End: r.End.On(date, loc)}
}

// WeeklySchedule рабочие часы по дням недели, индекс = time.Weekday
// nil означает выходной
type WeeklySchedule [7]*TimeRange

// For возвращает рабочий интервал на день недели
func (s WeeklySchedule) For(day time.Weekday) (TimeRange, bool) {
	if day < time.Sunday || day > time.Saturday || s[day] == nil {
		return TimeRange{}, false
	}
	return *s[day], true
}

// Set задает рабочий интервал на день недели
func (s *WeeklySchedule) Set(day time.Weekday, r TimeRange) {
	rr := r
	s[day] = &rr
}
