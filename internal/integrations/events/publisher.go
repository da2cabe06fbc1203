package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublisherClosed возвращается при публикации через закрытый publisher
	ErrPublisherClosed = errors.New("events: publisher is closed")

	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("events: failed to publish event")
)

// Logger интерфейс логирования для publisher
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события жизненного цикла записей в RabbitMQ.
// Ошибки публикации не должны прерывать основной поток обработки:
// вызывающий код логирует их и продолжает работу
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      Logger
}

// NewPublisher подключается к RabbitMQ и объявляет durable topic exchange
func NewPublisher(url, exchange string, log Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: failed to declare exchange %s: %w", exchange, err)
	}

	log.Info("Events publisher connected: exchange=%s", exchange)

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log,
	}, nil
}

// Publish сериализует событие в JSON и публикует его persistent-сообщением
func (p *Publisher) Publish(ctx context.Context, routingKey string, event AppointmentEvent) error {
	if p.ch == nil {
		return ErrPublisherClosed
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPublish, err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		p.log.Error("Failed to publish event %s: %v", routingKey, err)
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

// Close закрывает канал и соединение с RabbitMQ
func (p *Publisher) Close() {
	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}

// NopPublisher заглушка, используемая при выключенной публикации событий
type NopPublisher struct{}

// Publish ничего не делает
func (NopPublisher) Publish(ctx context.Context, routingKey string, event AppointmentEvent) error {
	return nil
}
