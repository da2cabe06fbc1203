package appointments

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error)
	ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	MarkPointsAwarded(ctx context.Context, id int64) error
}

// PatientRepository интерфейс репозитория пациентов
type PatientRepository interface {
	AwardPoints(ctx context.Context, patientID int64, points int) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации событий
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event events.AppointmentEvent) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
