package payment_callback

import (
	"context"

	processPayment "github.com/simaclinic/booking-service/internal/usecase/process_payment"
)

type ProcessPaymentUseCase interface {
	HandleCallback(ctx context.Context, req *processPayment.CallbackRequest) (*processPayment.CallbackResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
