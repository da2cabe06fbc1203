package domain

import "github.com/simaclinic/booking-service/pkg/types"

// Gender пол пациента
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// GenderScope ограничение рабочего интервала по полу пациента
type GenderScope string

const (
	// GenderScopeAll интервал доступен всем пациентам
	GenderScopeAll GenderScope = "ALL"
	// GenderScopeMale интервал только для мужчин
	GenderScopeMale GenderScope = "MALE"
	// GenderScopeFemale интервал только для женщин
	GenderScopeFemale GenderScope = "FEMALE"
)

// MatchesGender возвращает true, если интервал доступен пациенту
// с указанным полом; gender == nil означает гостя/неуказанный пол,
// такому пациенту доступны только интервалы ALL
func (s GenderScope) MatchesGender(gender *Gender) bool {
	if s == GenderScopeAll {
		return true
	}
	if gender == nil {
		return false
	}
	return string(s) == string(*gender)
}

// ServiceGroup группа услуг
type ServiceGroup struct {
	ID   int64
	Name string

	// HasDevices услуги группы требуют выбора аппарата при бронировании
	HasDevices bool

	// AllowMultipleSelection в одной записи можно выбрать несколько услуг группы
	AllowMultipleSelection bool

	// AvailableDeviceIDs аппараты, разрешенные для услуг этой группы
	AvailableDeviceIDs []int64
}

// AllowsDevice проверяет, что аппарат входит в список разрешенных для группы
func (g *ServiceGroup) AllowsDevice(deviceID int64) bool {
	for _, id := range g.AvailableDeviceIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}

// Service услуга клиники
type Service struct {
	ID      int64
	GroupID int64
	Name    string

	// DurationMinutes фиксированная длительность услуги
	DurationMinutes int

	// Price цена в томанах
	Price int64
}

// Device физический аппарат (например, лазер), общий ресурс между записями
// В один интервал времени аппарат обслуживает не более одной записи
type Device struct {
	ID   int64
	Name string
}

// WorkHours повторяющийся недельный рабочий интервал
// Принадлежит ровно одному из: группе услуг (общие часы) или услуге
// (приоритетные часы); инвариант взаимоисключения обеспечивается
// CHECK-констрейнтом в БД
type WorkHours struct {
	ID int64

	// DayOfWeek день недели клиники: суббота = 0 ... пятница = 6
	DayOfWeek int

	StartTime types.TimeString
	EndTime   types.TimeString

	ServiceGroupID *int64
	ServiceID      *int64

	GenderScope GenderScope
}
