package domain

import "time"

// AppointmentStatus статус записи на прием
type AppointmentStatus string

const (
	// StatusPending запись создана и ждет оплаты
	StatusPending AppointmentStatus = "PENDING"
	// StatusConfirmed оплата прошла или запись подтверждена вручную персоналом
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	// StatusCanceled запись отменена (неуспешная оплата, ручная отмена, истекший TTL)
	StatusCanceled AppointmentStatus = "CANCELED"
	// StatusDone услуга оказана, отмечается персоналом
	StatusDone AppointmentStatus = "DONE"
)

// OccupyingStatuses статусы, при которых запись занимает свой интервал
// Только такие записи участвуют в проверке пересечений
var OccupyingStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}

// Appointment запись на прием
type Appointment struct {
	ID        int64
	PatientID int64

	// ServiceIDs выбранные услуги; все услуги одной записи принадлежат
	// одной группе, суммарная длительность определяет интервал
	ServiceIDs []int64

	// DeviceID выбранный аппарат; nil для услуг без аппарата
	DeviceID *int64

	// TrackingCode уникальный код для поиска записи без аккаунта
	TrackingCode string

	StartTime time.Time
	EndTime   time.Time
	Status    AppointmentStatus

	// Бухгалтерия скидок: фиксируется на момент создания записи
	PointsDiscountAmount int64
	PointsUsed           int
	DiscountCodeID       *int64
	CodeDiscountAmount   int64

	TotalPrice int64

	// IsRated пациент оставил отзыв по этой записи
	IsRated bool
	// PointsAwarded бонусные баллы за визит уже начислены
	PointsAwarded bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccupiesSlot возвращает true, если запись занимает свой интервал
// для целей проверки пересечений
func (a *Appointment) OccupiesSlot() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCancelled возвращает true, если запись можно отменить
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCompleted возвращает true, если запись можно отметить как выполненную
// DONE достижим только из CONFIRMED
func (a *Appointment) CanBeCompleted() bool {
	return a.Status == StatusConfirmed
}

// IsTerminal возвращает true для конечных статусов
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCanceled || a.Status == StatusDone
}

// TotalDiscount суммарная скидка по записи, не превышает полной цены
func (a *Appointment) TotalDiscount() int64 {
	total := a.PointsDiscountAmount + a.CodeDiscountAmount
	if total > a.TotalPrice {
		return a.TotalPrice
	}
	return total
}

// PayableAmount сумма к оплате после скидок
func (a *Appointment) PayableAmount() int64 {
	return a.TotalPrice - a.TotalDiscount()
}
