package process_payment

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrAccessDenied возвращается при попытке оплатить чужую запись
	ErrAccessDenied = errors.New("access to appointment denied")

	// ErrNotPayable возвращается, когда запись не в статусе ожидания оплаты
	ErrNotPayable = errors.New("appointment is not awaiting payment")

	// ErrPaymentNotFound возвращается, когда платежная транзакция не найдена
	ErrPaymentNotFound = errors.New("payment transaction not found")

	// ErrGatewayUnavailable возвращается при ошибке обращения к платежному шлюзу
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
