package get_employee_appointments

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-BarberService/internal/domain"
)

var errInvalidPeriod = errors.New("to must not be before from")

// ParsePeriod разбирает период из query параметров в часовом поясе заведения
// Обе даты включительно; без to берется один день from. Результат полуоткрытый: [from, to+1 день)
func ParsePeriod(fromStr, toStr string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(domain.DateFormat, fromStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to := from
	if toStr != "" {
		to, err = time.ParseInLocation(domain.DateFormat, toStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, errInvalidPeriod
		}
	}

	return from, to.AddDate(0, 0, 1), nil
}
