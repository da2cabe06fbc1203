package get_available_slots

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// CatalogRepository интерфейс каталога услуг и рабочих часов
type CatalogRepository interface {
	// GetServicesByIDs получает услуги по списку ID
	GetServicesByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error)
	// GetGroupByID получает группу услуг с разрешенными аппаратами
	GetGroupByID(ctx context.Context, id int64) (*domain.ServiceGroup, error)
	// ListServiceWorkHours получает рабочие часы услуги по дням недели и ограничениям по полу
	ListServiceWorkHours(ctx context.Context, serviceID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error)
	// ListGroupWorkHours получает рабочие часы группы по дням недели и ограничениям по полу
	ListGroupWorkHours(ctx context.Context, groupID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListOccupied получает занятые интервалы ресурса, пересекающие [from, to)
	ListOccupied(ctx context.Context, from, to time.Time, resource domain.ResourceSelector) ([]domain.Interval, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
