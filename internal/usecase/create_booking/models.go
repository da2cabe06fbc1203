package create_booking

import (
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	// Actor кто оформляет запись: сам пациент или сотрудник от его имени
	Actor domain.BookingActor

	ServiceIDs []int64
	DeviceID   *int64

	// StartTime выбранное начало записи (с таймзоной)
	StartTime time.Time

	// PointsToSpend сколько бонусных баллов пациент хочет потратить
	PointsToSpend int

	// DiscountCode код скидки; пустая строка - без кода
	DiscountCode string
}

// Response модель ответа с созданной записью
type Response struct {
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
