package events

import "time"

// Ключи маршрутизации событий.
const (
	RoutingKeyAppointmentCreated   = "appointment.created"
	RoutingKeyAppointmentConfirmed = "appointment.confirmed"
	RoutingKeyAppointmentCanceled  = "appointment.canceled"
	RoutingKeyAppointmentCompleted = "appointment.completed"
)

// AppointmentEvent событие жизненного цикла записи
type AppointmentEvent struct {
	AppointmentID int64     `json:"appointment_id"`
	PatientID     int64     `json:"patient_id"`
	TrackingCode  string    `json:"tracking_code"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}
