package get_day_appointments

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

type AppointmentsService interface {
	ListForDay(ctx context.Context, date time.Time, actor domain.BookingActor) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
