package start_payment

import (
	"context"

	processPayment "github.com/simaclinic/booking-service/internal/usecase/process_payment"
)

type ProcessPaymentUseCase interface {
	Start(ctx context.Context, req *processPayment.StartRequest) (*processPayment.StartResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
