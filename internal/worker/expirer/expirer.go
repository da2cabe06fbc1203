package expirer

import (
	"context"
	"fmt"
	"time"

	cron "github.com/robfig/cron/v3"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// CancelExpiredPending отменяет записи, ждущие оплаты дольше cutoff
	CancelExpiredPending(ctx context.Context, cutoff time.Time) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker фоновая задача отмены записей, не оплаченных за отведенное время.
// Слоты таких записей возвращаются в выдачу доступности
type Worker struct {
	appointmentRepo AppointmentRepository
	logger          Logger
	cron            *cron.Cron

	interval   time.Duration
	pendingTTL time.Duration
}

// New создает worker с периодом запуска interval и временем жизни
// неоплаченной записи pendingTTL
func New(appointmentRepo AppointmentRepository, interval, pendingTTL time.Duration, logger Logger) *Worker {
	return &Worker{
		appointmentRepo: appointmentRepo,
		logger:          logger,
		cron:            cron.New(),
		interval:        interval,
		pendingTTL:      pendingTTL,
	}
}

// Start запускает периодическую отмену просроченных записей
func (w *Worker) Start() error {
	spec := fmt.Sprintf("@every %s", w.interval)
	if _, err := w.cron.AddFunc(spec, w.run); err != nil {
		return fmt.Errorf("expirer: failed to schedule job: %w", err)
	}

	w.cron.Start()
	w.logger.Info("Expirer started: interval=%s, pending TTL=%s", w.interval, w.pendingTTL)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего запуска
func (w *Worker) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("Expirer stopped")
}

func (w *Worker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	cutoff := time.Now().Add(-w.pendingTTL)

	cancelled, err := w.appointmentRepo.CancelExpiredPending(ctx, cutoff)
	if err != nil {
		w.logger.Error("Expirer: failed to cancel expired pending appointments: %v", err)
		return
	}

	if cancelled > 0 {
		w.logger.Info("Expirer: cancelled %d appointments unpaid since %s",
			cancelled, cutoff.Format(time.RFC3339))
	}
}
