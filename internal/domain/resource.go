package domain

import "fmt"

// ResourceSelector ключ ресурса, по которому записи конкурируют за интервал.
// Запись с аппаратом пересекается только с записями того же аппарата;
// запись без аппарата - только с записями без аппарата. Разные аппараты
// никогда не конфликтуют между собой.
type ResourceSelector struct {
	deviceID *int64
}

// DeviceResource селектор для записей конкретного аппарата
func DeviceResource(deviceID int64) ResourceSelector {
	return ResourceSelector{deviceID: &deviceID}
}

// NoDeviceResource селектор для записей без аппарата
func NoDeviceResource() ResourceSelector {
	return ResourceSelector{}
}

// IsDevice возвращает true, если селектор привязан к аппарату
func (r ResourceSelector) IsDevice() bool {
	return r.deviceID != nil
}

// DeviceID возвращает ID аппарата или nil для селектора "без аппарата"
func (r ResourceSelector) DeviceID() *int64 {
	return r.deviceID
}

// String метка ресурса для логов и метрик
func (r ResourceSelector) String() string {
	if r.deviceID == nil {
		return "no-device"
	}
	return fmt.Sprintf("device-%d", *r.deviceID)
}
