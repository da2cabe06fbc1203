package domain

import "time"

// Slot кандидат на бронирование: фиксированный интервал, еще не занятый
type Slot struct {
	Start time.Time
	End   time.Time

	// ReadableStart человекочитаемая подпись начала слота на фарси
	// (день недели, число, месяц по солнечной хиджре, время)
	ReadableStart string
}

// Interval полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps проверяет реальное пересечение двух полуоткрытых интервалов.
// Строгие неравенства: интервалы, граничащие концами (10:00-10:30 и
// 10:30-11:00), не считаются пересекающимися
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}
