package domain

import "time"

// PaymentStatus статус платежной транзакции
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentTransaction попытка оплаты записи через внешний шлюз
// На каждую запись хранится не более одной строки: повторная попытка
// оплаты перезаписывает authority предыдущей
type PaymentTransaction struct {
	ID            int64
	AppointmentID int64

	// Amount сумма к оплате в томанах (после скидок)
	Amount int64

	// Authority токен, выданный шлюзом на шаге request
	Authority *string

	// RefID ссылка шлюза на успешный платеж, заполняется после verify
	RefID *string

	Status PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
