package get_patient_appointments

import (
	"context"

	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

type AppointmentsService interface {
	ListPatientAppointments(ctx context.Context, req *models.ListPatientAppointmentsRequest) (*models.AppointmentListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
