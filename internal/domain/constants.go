package domain

import "time"

// Форматы дат и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Дни недели клиники: неделя начинается с субботы
const (
	WeekdaySaturday = 0
	WeekdayFriday   = 6
)

// ClinicWeekday переводит день недели Go (воскресенье = 0) в нумерацию
// клиники (суббота = 0). Смещение фиксированное, не настраивается
func ClinicWeekday(wd time.Weekday) int {
	return (int(wd) + 1) % 7
}
