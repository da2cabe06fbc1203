package get_available_slots

import (
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// walkPeriod проходит один рабочий интервал дня с фиксированным шагом
// totalDuration минут и собирает свободные слоты.
// Правила обхода:
//   - слот-кандидат [cursor, cursor+totalDuration) должен целиком помещаться
//     в рабочий интервал; как только конец кандидата выходит за конец
//     интервала, обход прекращается (слоты не перетекают через перерыв
//     в следующую смену)
//   - кандидат, начинающийся не строго в будущем, пропускается, но курсор
//     все равно продвигается на totalDuration
//   - кандидат, пересекающийся хотя бы с одним занятым интервалом ресурса,
//     пропускается, курсор тоже продвигается
func walkPeriod(
	date time.Time,
	wh *domain.WorkHours,
	totalDuration int,
	now time.Time,
	occupied []domain.Interval,
	loc *time.Location,
) ([]domain.Slot, error) {
	periodStart, err := wh.StartTime.At(date, loc)
	if err != nil {
		return nil, err
	}
	periodEnd, err := wh.EndTime.At(date, loc)
	if err != nil {
		return nil, err
	}

	step := time.Duration(totalDuration) * time.Minute

	slots := make([]domain.Slot, 0)
	for cursor := periodStart; ; cursor = cursor.Add(step) {
		slotEnd := cursor.Add(step)
		if slotEnd.After(periodEnd) {
			break
		}

		if !cursor.After(now) {
			continue
		}

		if overlapsAny(domain.Interval{Start: cursor, End: slotEnd}, occupied) {
			continue
		}

		slots = append(slots, domain.Slot{
			Start:         cursor,
			End:           slotEnd,
			ReadableStart: readableStart(cursor),
		})
	}

	return slots, nil
}

// overlapsAny проверяет пересечение кандидата хотя бы с одним занятым интервалом
func overlapsAny(candidate domain.Interval, occupied []domain.Interval) bool {
	for _, busy := range occupied {
		if candidate.Overlaps(busy) {
			return true
		}
	}
	return false
}

// bucketOccupiedByDate группирует занятые интервалы по локальной календарной
// дате начала. Конвертация в таймзону клиники обязательна до взятия даты,
// иначе записи возле полуночи попадают не в тот день
func bucketOccupiedByDate(occupied []domain.Interval, loc *time.Location) map[string][]domain.Interval {
	byDate := make(map[string][]domain.Interval)
	for _, iv := range occupied {
		key := iv.Start.In(loc).Format(domain.DateFormat)
		byDate[key] = append(byDate[key], iv)
	}
	return byDate
}

// startOfDay обнуляет время, оставляя только дату в указанной таймзоне
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
