package process_payment

import "github.com/simaclinic/booking-service/internal/domain"

// StartRequest модель запроса на начало оплаты записи
type StartRequest struct {
	// Actor кто инициирует оплату
	Actor domain.BookingActor

	AppointmentID int64
}

// StartResponse модель ответа на начало оплаты
type StartResponse struct {
	AppointmentID int64 `json:"appointment_id"`

	// Amount сумма к оплате в томанах
	Amount int64 `json:"amount"`

	// PaymentURL страница оплаты шлюза; пустая строка, если платить нечего
	// (полная скидка) и запись подтверждена сразу
	PaymentURL string `json:"payment_url,omitempty"`

	// Status статус записи после начала оплаты
	Status string `json:"status"`
}

// CallbackRequest модель callback-запроса от платежного шлюза
type CallbackRequest struct {
	// Authority токен платежа, выданный шлюзом на шаге request
	Authority string

	// GatewayOK шлюз сообщил об успешной оплате ("OK" в callback)
	GatewayOK bool
}

// CallbackResponse модель результата обработки callback
type CallbackResponse struct {
	AppointmentID int64  `json:"appointment_id"`
	TrackingCode  string `json:"tracking_code"`
	Success       bool   `json:"success"`
	RefID         string `json:"ref_id,omitempty"`
	Status        string `json:"status"`
}
