package track_appointment

import (
	"context"

	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

type AppointmentsService interface {
	GetByTrackingCode(ctx context.Context, code string) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
