package models

import "github.com/simaclinic/booking-service/internal/domain"

// GroupResponse ответ с данными группы услуг
type GroupResponse struct {
	ID                     int64  `json:"id"`
	Name                   string `json:"name"`
	HasDevices             bool   `json:"has_devices"`
	AllowMultipleSelection bool   `json:"allow_multiple_selection"`
}

// GroupListResponse ответ со списком групп услуг
type GroupListResponse struct {
	Groups []*GroupResponse `json:"groups"`
	Total  int              `json:"total"`
}

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Price           int64  `json:"price"`
}

// DeviceResponse ответ с данными аппарата
type DeviceResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GroupDetailResponse ответ с группой, её услугами и аппаратами
type GroupDetailResponse struct {
	Group    *GroupResponse     `json:"group"`
	Services []*ServiceResponse `json:"services"`
	Devices  []*DeviceResponse  `json:"devices"`
}

// FromDomainGroup конвертирует domain модель группы в response
func FromDomainGroup(group *domain.ServiceGroup) *GroupResponse {
	return &GroupResponse{
		ID:                     group.ID,
		Name:                   group.Name,
		HasDevices:             group.HasDevices,
		AllowMultipleSelection: group.AllowMultipleSelection,
	}
}

// FromDomainGroupList конвертирует список групп в response
func FromDomainGroupList(groups []*domain.ServiceGroup) *GroupListResponse {
	items := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		items[i] = FromDomainGroup(group)
	}
	return &GroupListResponse{
		Groups: items,
		Total:  len(items),
	}
}

// FromDomainServices конвертирует список услуг в response
func FromDomainServices(services []*domain.Service) []*ServiceResponse {
	items := make([]*ServiceResponse, len(services))
	for i, svc := range services {
		items[i] = &ServiceResponse{
			ID:              svc.ID,
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
			Price:           svc.Price,
		}
	}
	return items
}

// FromDomainDevices конвертирует список аппаратов в response
func FromDomainDevices(devices []*domain.Device) []*DeviceResponse {
	items := make([]*DeviceResponse, len(devices))
	for i, dev := range devices {
		items[i] = &DeviceResponse{
			ID:   dev.ID,
			Name: dev.Name,
		}
	}
	return items
}
