package process_payment

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
}

// PaymentRepository интерфейс репозитория платежных транзакций
type PaymentRepository interface {
	UpsertForAppointment(ctx context.Context, appointmentID, amount int64) (*domain.PaymentTransaction, error)
	SetAuthority(ctx context.Context, id int64, authority string) error
	SetStatus(ctx context.Context, id int64, status domain.PaymentStatus, refID *string) error
	GetByAuthority(ctx context.Context, authority string) (*domain.PaymentTransaction, error)
}

// GatewayClient интерфейс клиента платежного шлюза
type GatewayClient interface {
	// RequestPayment возвращает authority и URL страницы оплаты
	RequestPayment(ctx context.Context, amount int64, description string) (string, string, error)
	// VerifyPayment возвращает ref_id успешного платежа
	VerifyPayment(ctx context.Context, amount int64, authority string) (string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
