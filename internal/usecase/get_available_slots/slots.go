package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
	"github.com/m04kA/SMC-BarberService/pkg/types"
)

// generateCandidates генерирует все начала слотов от начала рабочего интервала с шагом duration
// Хвост интервала короче duration слотом не становится (start + duration <= end)
func generateCandidates(work domain.Interval, duration time.Duration) []time.Time {
	candidates := make([]time.Time, 0)
	for start := work.Start; !start.Add(duration).After(work.End); start = start.Add(duration) {
		candidates = append(candidates, start)
	}
	return candidates
}

// occupiedRanges собирает занятые интервалы: записи, обед, блоки календаря
func occupiedRanges(appointments []*domain.Appointment, lunch domain.Interval, blocks []domain.Interval) []domain.Interval {
	ranges := make([]domain.Interval, 0, len(appointments)+len(blocks)+1)
	ranges = append(ranges, lunch)

	for _, a := range appointments {
		if !a.OccupiesTime() {
			continue
		}
		ranges = append(ranges, a.Interval())
	}

	return append(ranges, blocks...)
}

// freeSlots оставляет кандидатов, не пересекающихся ни с одним занятым интервалом
//
// Примеры (шаг 30 минут):
// - запись 10:00-10:30 → слот 10:00 занят, слоты 09:30 и 10:30 свободны (граничат)
// - обед 13:00-14:30 → слоты 13:00, 13:30, 14:00 заняты, 12:30 и 14:30 свободны
func freeSlots(candidates []time.Time, duration time.Duration, occupied []domain.Interval) []types.TimeString {
	slots := make([]types.TimeString, 0, len(candidates))

	for _, start := range candidates {
		slot := domain.Interval{Start: start, End: start.Add(duration)}
		if slot.OverlapsAny(occupied) {
			continue
		}
		slots = append(slots, types.NewTimeString(start))
	}

	return slots
}

// dayBounds начало дня и начало следующего дня в часовом поясе заведения
func dayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
