package paymentgateway

import "errors"

var (
	// ErrPaymentDeclined возвращается, когда шлюз отклонил платеж
	ErrPaymentDeclined = errors.New("payment gateway: payment declined")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("payment gateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе шлюза
	ErrInvalidResponse = errors.New("payment gateway client: invalid response")
)
