package create_appointment

import (
	"context"

	createBooking "github.com/simaclinic/booking-service/internal/usecase/create_booking"
)

type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

type Metrics interface {
	IncAppointmentsCreated(status string)
	IncSlotConflict(resource string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
