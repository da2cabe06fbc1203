package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/simaclinic/booking-service/internal/usecase/get_available_slots"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	Start         string `json:"start"` // ISO-8601
	End           string `json:"end"`   // ISO-8601
	ReadableStart string `json:"readable_start"`
}

// SlotsResponse HTTP модель ответа: слоты по дням солнечной хиджры
type SlotsResponse struct {
	Days map[string][]SlotResponse `json:"days"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	days := make(map[string][]SlotResponse, len(resp.Days))
	for date, slots := range resp.Days {
		items := make([]SlotResponse, len(slots))
		for i, slot := range slots {
			items[i] = SlotResponse{
				Start:         slot.Start.Format(time.RFC3339),
				End:           slot.End.Format(time.RFC3339),
				ReadableStart: slot.ReadableStart,
			}
		}
		days[date] = items
	}
	return &SlotsResponse{Days: days}
}
