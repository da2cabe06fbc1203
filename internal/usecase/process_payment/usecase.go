package process_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	appointmentRepo "github.com/simaclinic/booking-service/internal/infra/storage/appointment"
	paymentRepo "github.com/simaclinic/booking-service/internal/infra/storage/payment"
)

// UseCase use case оплаты записи через внешний шлюз
//
// Жизненный цикл: Start создает платежную транзакцию и получает у шлюза
// authority, пациент уходит на страницу оплаты; шлюз возвращается
// callback-ом, HandleCallback сверяет платеж через verify и подтверждает
// либо отменяет запись
type UseCase struct {
	appointmentRepo AppointmentRepository
	paymentRepo     PaymentRepository
	gateway         GatewayClient
	txManager       TransactionManager
	publisher       EventPublisher
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	paymentRepo PaymentRepository,
	gateway GatewayClient,
	txManager TransactionManager,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		paymentRepo:     paymentRepo,
		gateway:         gateway,
		txManager:       txManager,
		publisher:       publisher,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Start начинает оплату записи
func (uc *UseCase) Start(ctx context.Context, req *StartRequest) (*StartResponse, error) {
	uc.logger.Info("ProcessPayment: start for appointment id=%d by patient=%d",
		req.AppointmentID, req.Actor.EffectivePatientID)

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	appt, err := uc.getAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	// Платить за чужую запись может только сотрудник
	if appt.PatientID != req.Actor.EffectivePatientID && !req.Actor.IsStaffAssisted {
		uc.logger.Warn("ProcessPayment: patient id=%d denied access to appointment id=%d",
			req.Actor.EffectivePatientID, appt.ID)
		return nil, ErrAccessDenied
	}

	if appt.Status != domain.StatusPending {
		uc.logger.Warn("ProcessPayment: appointment id=%d is %s, not awaiting payment", appt.ID, appt.Status)
		return nil, ErrNotPayable
	}

	amount := appt.PayableAmount()

	// Скидки покрыли полную цену: подтверждаем без обращения к шлюзу
	if amount <= 0 {
		if err := uc.appointmentRepo.UpdateStatus(ctx, appt.ID, domain.StatusConfirmed); err != nil {
			uc.logger.Error("ProcessPayment: failed to confirm appointment id=%d: %v", appt.ID, err)
			return nil, fmt.Errorf("%w: failed to confirm appointment: %v", ErrInternal, err)
		}
		uc.publish(ctx, appt, events.RoutingKeyAppointmentConfirmed, domain.StatusConfirmed)
		uc.logger.Info("ProcessPayment: appointment id=%d confirmed with zero payable amount", appt.ID)

		return &StartResponse{
			AppointmentID: appt.ID,
			Amount:        0,
			Status:        string(domain.StatusConfirmed),
		}, nil
	}

	tx, err := uc.paymentRepo.UpsertForAppointment(ctx, appt.ID, amount)
	if err != nil {
		uc.logger.Error("ProcessPayment: failed to upsert transaction for appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: failed to create payment transaction: %v", ErrInternal, err)
	}

	description := fmt.Sprintf("appointment %s", appt.TrackingCode)
	authority, payURL, err := uc.gateway.RequestPayment(ctx, amount, description)
	if err != nil {
		uc.logger.Error("ProcessPayment: gateway request failed for appointment id=%d: %v", appt.ID, err)
		uc.failPayment(ctx, tx.ID, appt)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	if err := uc.paymentRepo.SetAuthority(ctx, tx.ID, authority); err != nil {
		uc.logger.Error("ProcessPayment: failed to store authority for transaction id=%d: %v", tx.ID, err)
		return nil, fmt.Errorf("%w: failed to store authority: %v", ErrInternal, err)
	}

	uc.logger.Info("ProcessPayment: appointment id=%d awaits payment of %d, authority=%s",
		appt.ID, amount, authority)

	return &StartResponse{
		AppointmentID: appt.ID,
		Amount:        amount,
		PaymentURL:    payURL,
		Status:        string(appt.Status),
	}, nil
}

// HandleCallback обрабатывает возврат пациента со страницы оплаты
func (uc *UseCase) HandleCallback(ctx context.Context, req *CallbackRequest) (*CallbackResponse, error) {
	uc.logger.Info("ProcessPayment: callback authority=%s ok=%t", req.Authority, req.GatewayOK)

	if req.Authority == "" {
		return nil, fmt.Errorf("%w: authority is required", ErrInvalidInput)
	}

	tx, err := uc.paymentRepo.GetByAuthority(ctx, req.Authority)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrTransactionNotFound) {
			uc.logger.Warn("ProcessPayment: unknown authority %s", req.Authority)
			return nil, ErrPaymentNotFound
		}
		uc.logger.Error("ProcessPayment: failed to get transaction by authority: %v", err)
		return nil, fmt.Errorf("%w: failed to get transaction: %v", ErrInternal, err)
	}

	appt, err := uc.getAppointment(ctx, tx.AppointmentID)
	if err != nil {
		return nil, err
	}

	// Пациент отменил оплату на стороне шлюза
	if !req.GatewayOK {
		uc.logger.Info("ProcessPayment: payment canceled by patient, appointment id=%d", appt.ID)
		if err := uc.settleFailure(ctx, tx, appt); err != nil {
			return nil, err
		}
		return &CallbackResponse{
			AppointmentID: appt.ID,
			TrackingCode:  appt.TrackingCode,
			Success:       false,
			Status:        string(domain.StatusCanceled),
		}, nil
	}

	refID, err := uc.gateway.VerifyPayment(ctx, tx.Amount, req.Authority)
	if err != nil {
		uc.logger.Warn("ProcessPayment: verify failed for appointment id=%d: %v", appt.ID, err)
		if err := uc.settleFailure(ctx, tx, appt); err != nil {
			return nil, err
		}
		return &CallbackResponse{
			AppointmentID: appt.ID,
			TrackingCode:  appt.TrackingCode,
			Success:       false,
			Status:        string(domain.StatusCanceled),
		}, nil
	}

	// Подтверждение записи и фиксация успешного платежа атомарны
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.paymentRepo.SetStatus(txCtx, tx.ID, domain.PaymentSuccess, &refID); err != nil {
			return fmt.Errorf("%w: failed to mark payment success: %v", ErrInternal, err)
		}
		if appt.Status == domain.StatusPending {
			if err := uc.appointmentRepo.UpdateStatus(txCtx, appt.ID, domain.StatusConfirmed); err != nil {
				return fmt.Errorf("%w: failed to confirm appointment: %v", ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("ProcessPayment: failed to settle success for appointment id=%d: %v", appt.ID, err)
		return nil, err
	}

	uc.publish(ctx, appt, events.RoutingKeyAppointmentConfirmed, domain.StatusConfirmed)
	uc.logger.Info("ProcessPayment: appointment id=%d confirmed, ref_id=%s", appt.ID, refID)

	return &CallbackResponse{
		AppointmentID: appt.ID,
		TrackingCode:  appt.TrackingCode,
		Success:       true,
		RefID:         refID,
		Status:        string(domain.StatusConfirmed),
	}, nil
}

func (uc *UseCase) getAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := uc.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("ProcessPayment: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("ProcessPayment: failed to get appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}
	return appt, nil
}

// settleFailure помечает платеж неуспешным и отменяет запись, если она
// все еще ждет оплаты
func (uc *UseCase) settleFailure(ctx context.Context, tx *domain.PaymentTransaction, appt *domain.Appointment) error {
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.paymentRepo.SetStatus(txCtx, tx.ID, domain.PaymentFailed, nil); err != nil {
			return fmt.Errorf("%w: failed to mark payment failed: %v", ErrInternal, err)
		}
		if appt.Status == domain.StatusPending {
			if err := uc.appointmentRepo.UpdateStatus(txCtx, appt.ID, domain.StatusCanceled); err != nil {
				return fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("ProcessPayment: failed to settle failure for appointment id=%d: %v", appt.ID, err)
		return err
	}

	uc.publish(ctx, appt, events.RoutingKeyAppointmentCanceled, domain.StatusCanceled)
	return nil
}

// failPayment помечает платеж неуспешным после ошибки шлюза на шаге request
func (uc *UseCase) failPayment(ctx context.Context, txID int64, appt *domain.Appointment) {
	if err := uc.paymentRepo.SetStatus(ctx, txID, domain.PaymentFailed, nil); err != nil {
		uc.logger.Error("ProcessPayment: failed to mark payment failed for transaction id=%d: %v", txID, err)
	}
}

func (uc *UseCase) publish(ctx context.Context, appt *domain.Appointment, routingKey string, status domain.AppointmentStatus) {
	event := events.AppointmentEvent{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		TrackingCode:  appt.TrackingCode,
		Status:        string(status),
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		OccurredAt:    uc.timeProvider.Now(),
	}

	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		uc.logger.Error("ProcessPayment: failed to publish %s for appointment id=%d: %v",
			routingKey, appt.ID, err)
	}
}
