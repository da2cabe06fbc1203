package catalog

import (
	"context"

	"github.com/simaclinic/booking-service/internal/domain"
)

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	ListGroups(ctx context.Context) ([]*domain.ServiceGroup, error)
	GetGroupByID(ctx context.Context, id int64) (*domain.ServiceGroup, error)
	ListServicesByGroup(ctx context.Context, groupID int64) ([]*domain.Service, error)
	GetDevicesByIDs(ctx context.Context, ids []int64) ([]*domain.Device, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
