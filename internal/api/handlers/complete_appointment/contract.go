package complete_appointment

import (
	"context"

	"github.com/simaclinic/booking-service/internal/domain"
)

type AppointmentsService interface {
	Complete(ctx context.Context, id int64, actor domain.BookingActor) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
