package get_available_slots

import (
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	PatientID  *int64         // ID пациента (для логирования, на результат не влияет)
	Gender     *domain.Gender // Пол пациента; nil для гостя/неуказанного пола
	ServiceIDs []int64        // Выбранные услуги (все из одной группы)
	DeviceID   *int64         // Аппарат; обязателен, если группа требует аппарат
	StartDate  time.Time      // Первый день диапазона (без времени)
	EndDate    time.Time      // Последний день диапазона включительно
}

// Response модель ответа: слоты, сгруппированные по дням
type Response struct {
	// Days отображение "дата по солнечной хиджре" -> слоты в хронологическом
	// порядке. Дни без единого свободного слота в отображении отсутствуют
	Days map[string][]domain.Slot
}

// emptyResponse ответ без единого свободного слота
func emptyResponse() *Response {
	return &Response{Days: map[string][]domain.Slot{}}
}
