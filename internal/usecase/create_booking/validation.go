package create_booking

import (
	"fmt"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Actor.EffectivePatientID <= 0 {
		return fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one serviceID is required", ErrInvalidInput)
	}

	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
	}

	if req.DeviceID != nil && *req.DeviceID <= 0 {
		return fmt.Errorf("%w: deviceID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrInvalidInput)
	}

	if req.PointsToSpend < 0 {
		return fmt.Errorf("%w: points to spend must not be negative", ErrInvalidInput)
	}

	return nil
}

// validateServices проверяет, что все услуги найдены, принадлежат одной
// группе и дают положительную суммарную длительность.
// Возвращает группу первой услуги и суммарные длительность и цену
func validateServices(req *Request, services []*domain.Service) (int64, int, int64, error) {
	if len(services) != len(req.ServiceIDs) {
		return 0, 0, 0, ErrServiceNotFound
	}

	groupID := services[0].GroupID
	totalDuration := 0
	var totalPrice int64

	for _, svc := range services {
		if svc.GroupID != groupID {
			return 0, 0, 0, ErrMixedServiceGroups
		}
		totalDuration += svc.DurationMinutes
		totalPrice += svc.Price
	}

	if totalDuration <= 0 {
		return 0, 0, 0, fmt.Errorf("%w: total duration must be positive", ErrInvalidInput)
	}

	return groupID, totalDuration, totalPrice, nil
}

// validateDevice проверяет требование аппарата для группы и возвращает
// селектор ресурса, по которому запись конкурирует за интервал
func validateDevice(group *domain.ServiceGroup, deviceID *int64) (domain.ResourceSelector, error) {
	if !group.HasDevices {
		// Аппарат для группы без аппаратов игнорируется
		return domain.NoDeviceResource(), nil
	}

	if deviceID == nil {
		return domain.ResourceSelector{}, ErrDeviceRequired
	}

	if !group.AllowsDevice(*deviceID) {
		return domain.ResourceSelector{}, ErrDeviceNotAllowed
	}

	return domain.DeviceResource(*deviceID), nil
}

// validateStartTime проверяет, что запись создается строго в будущем
func validateStartTime(startTime, now time.Time) error {
	if !startTime.After(now) {
		return ErrPastStartTime
	}
	return nil
}
