package models

import (
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// Request модели

// ListPatientAppointmentsRequest запрос на историю записей пациента
type ListPatientAppointmentsRequest struct {
	PatientID int64
	Actor     domain.BookingActor

	// Status фильтр по статусу (опционально)
	Status *string
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	ServiceIDs    []int64   `json:"service_ids"`
	DeviceID      *int64    `json:"device_id,omitempty"`
	TrackingCode  string    `json:"tracking_code"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	TotalPrice    int64     `json:"total_price"`
	TotalDiscount int64     `json:"total_discount"`
	PayableAmount int64     `json:"payable_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	Total        int                    `json:"total"`
}

// FromDomainAppointment конвертирует domain модель в response
func FromDomainAppointment(appt *domain.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:            appt.ID,
		PatientID:     appt.PatientID,
		ServiceIDs:    appt.ServiceIDs,
		DeviceID:      appt.DeviceID,
		TrackingCode:  appt.TrackingCode,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        string(appt.Status),
		TotalPrice:    appt.TotalPrice,
		TotalDiscount: appt.TotalDiscount(),
		PayableAmount: appt.PayableAmount(),
		CreatedAt:     appt.CreatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в response
func FromDomainAppointmentList(appts []*domain.Appointment) *AppointmentListResponse {
	items := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		items[i] = FromDomainAppointment(appt)
	}
	return &AppointmentListResponse{
		Appointments: items,
		Total:        len(items),
	}
}

// ToDomainStatus конвертирует строковый статус в domain
func ToDomainStatus(status string) (domain.AppointmentStatus, bool) {
	switch domain.AppointmentStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCanceled, domain.StatusDone:
		return domain.AppointmentStatus(status), true
	default:
		return "", false
	}
}
