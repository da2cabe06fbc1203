package create_appointment

import (
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	createBooking "github.com/simaclinic/booking-service/internal/usecase/create_booking"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	// PatientID пациент, на которого оформляется запись;
	// учитывается только для сотрудников, по умолчанию - сам пользователь
	PatientID *int64 `json:"patient_id,omitempty"`

	ServiceIDs []int64 `json:"service_ids"`
	DeviceID   *int64  `json:"device_id,omitempty"`

	StartTime string `json:"start_time"` // ISO-8601

	PointsToSpend int    `json:"points_to_spend,omitempty"`
	DiscountCode  string `json:"discount_code,omitempty"`

	// ManualConfirm сотрудник подтверждает запись сразу, без оплаты
	ManualConfirm bool `json:"manual_confirm,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.BookingActor) (*createBooking.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	actor.ManualConfirm = r.ManualConfirm

	return &createBooking.Request{
		Actor:         actor,
		ServiceIDs:    r.ServiceIDs,
		DeviceID:      r.DeviceID,
		StartTime:     startTime,
		PointsToSpend: r.PointsToSpend,
		DiscountCode:  r.DiscountCode,
	}, nil
}
