package create_booking

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
)

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetServicesByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error)
	GetGroupByID(ctx context.Context, id int64) (*domain.ServiceGroup, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	// ListOccupied внутри транзакции блокирует найденные строки (FOR UPDATE)
	ListOccupied(ctx context.Context, from, to time.Time, resource domain.ResourceSelector) ([]domain.Interval, error)
}

// PatientRepository интерфейс репозитория пациентов
type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	// DeductPoints списывает баллы; возвращает ErrInsufficientPoints при нехватке
	DeductPoints(ctx context.Context, patientID int64, points int) error
}

// DiscountRepository интерфейс репозитория кодов скидок
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	MarkUsed(ctx context.Context, id int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий после коммита
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event events.AppointmentEvent) error
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
