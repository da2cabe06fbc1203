package domain

// Patient проекция пациента из системы аккаунтов
// Сервис бронирования читает её и уменьшает баланс баллов
// внутри транзакции создания записи
type Patient struct {
	ID int64

	// Gender пол пациента; nil - не указан (гость)
	Gender *Gender

	// Points баланс бонусных баллов
	Points int

	// IsStaff сотрудник клиники (может оформлять записи от имени пациентов)
	IsStaff bool
}

// BookingActor кто выполняет бронирование.
// Заменяет неявное сессионное состояние "работаю от имени пациента":
// контекст передается явно через вызов
type BookingActor struct {
	// EffectivePatientID пациент, на которого оформляется запись
	EffectivePatientID int64

	// IsStaffAssisted запись оформляет сотрудник от имени пациента
	IsStaffAssisted bool

	// ManualConfirm сотрудник сразу подтверждает запись без оплаты
	// Учитывается только при IsStaffAssisted
	ManualConfirm bool
}

// InitialStatus статус создаваемой записи в зависимости от того,
// кто её оформляет
func (a BookingActor) InitialStatus() AppointmentStatus {
	if a.IsStaffAssisted && a.ManualConfirm {
		return StatusConfirmed
	}
	return StatusPending
}
