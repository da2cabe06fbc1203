package get_available_slots

import (
	"context"

	"github.com/simaclinic/booking-service/internal/domain"
	getAvailableSlots "github.com/simaclinic/booking-service/internal/usecase/get_available_slots"
)

type GetAvailableSlotsUseCase interface {
	Execute(ctx context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error)
}

// PatientRepository используется для определения пола авторизованного
// пациента; гость остается без пола
type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
