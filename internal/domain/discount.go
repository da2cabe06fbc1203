package domain

import "time"

// DiscountType тип скидки
type DiscountType string

const (
	// DiscountPercentage скидка в процентах от полной цены
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixedAmount фиксированная сумма в томанах
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

// DiscountCode код скидки
type DiscountCode struct {
	ID    int64
	Code  string
	Type  DiscountType
	Value int64

	StartDate time.Time
	EndDate   time.Time
	IsActive  bool

	// PatientID если задан, код персональный и действует только для этого пациента
	PatientID *int64

	// IsOneTime одноразовый код; IsUsed выставляется в транзакции бронирования
	IsOneTime bool
	IsUsed    bool
}

// IsValid проверяет, что код активен и действует на момент now
func (d *DiscountCode) IsValid(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.StartDate) || now.After(d.EndDate) {
		return false
	}
	if d.IsOneTime && d.IsUsed {
		return false
	}
	return true
}

// AvailableFor проверяет персональную привязку кода
func (d *DiscountCode) AvailableFor(patientID int64) bool {
	return d.PatientID == nil || *d.PatientID == patientID
}

// Amount вычисляет сумму скидки для полной цены totalPrice
// Результат не превышает totalPrice
func (d *DiscountCode) Amount(totalPrice int64) int64 {
	var amount int64
	switch d.Type {
	case DiscountPercentage:
		amount = totalPrice * d.Value / 100
	case DiscountFixedAmount:
		amount = d.Value
	}
	if amount > totalPrice {
		return totalPrice
	}
	return amount
}
