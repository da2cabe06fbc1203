package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	discountRepo "github.com/simaclinic/booking-service/internal/infra/storage/discount"
	patientRepo "github.com/simaclinic/booking-service/internal/infra/storage/patient"
)

// UseCase use case для создания записи на прием
type UseCase struct {
	catalogRepo     CatalogRepository
	appointmentRepo AppointmentRepository
	patientRepo     PatientRepository
	discountRepo    DiscountRepository
	txManager       TransactionManager
	publisher       EventPublisher
	timeProvider    TimeProvider
	logger          Logger

	// loc фиксированная таймзона клиники
	loc *time.Location

	// pointsRate стоимость одного бонусного балла в томанах
	pointsRate int64
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	appointmentRepo AppointmentRepository,
	patientRepo PatientRepository,
	discountRepo DiscountRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	loc *time.Location,
	pointsRate int64,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		discountRepo:    discountRepo,
		txManager:       txManager,
		publisher:       publisher,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		loc:             loc,
		pointsRate:      pointsRate,
	}
}

// Execute выполняет use case создания записи
//
// Проверка занятости слота, создание записи, списание баллов и пометка
// одноразового кода скидки выполняются в одной сериализуемой транзакции:
// либо происходит все вместе, либо ничего. Занятые интервалы ресурса
// блокируются (FOR UPDATE), поэтому из конкурирующих попыток записи
// на пересекающиеся интервалы одного ресурса успешной будет ровно одна
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: patient=%d, staffAssisted=%t, services=%v, device=%v, start=%s",
		req.Actor.EffectivePatientID, req.Actor.IsStaffAssisted, req.ServiceIDs, req.DeviceID,
		req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в таймзоне клиники
	now := uc.timeProvider.Now().In(uc.loc)
	startTime := req.StartTime.In(uc.loc)

	if err := validateStartTime(startTime, now); err != nil {
		uc.logger.Warn("CreateBooking: start time %s is in the past", startTime.Format(time.RFC3339))
		return nil, err
	}

	// 3. Разрешаем услуги и считаем длительность и полную цену
	services, err := uc.catalogRepo.GetServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get services %v: %v", req.ServiceIDs, err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	groupID, totalDuration, totalPrice, err := validateServices(req, services)
	if err != nil {
		uc.logger.Warn("CreateBooking: service validation failed for %v: %v", req.ServiceIDs, err)
		return nil, err
	}

	// 4. Разрешаем группу, проверяем аппарат и множественный выбор
	group, err := uc.catalogRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get group id=%d: %v", groupID, err)
		return nil, fmt.Errorf("%w: failed to get group: %v", ErrInternal, err)
	}

	if len(req.ServiceIDs) > 1 && !group.AllowMultipleSelection {
		uc.logger.Warn("CreateBooking: group id=%d does not allow multiple services", groupID)
		return nil, ErrMultipleServicesNotAllowed
	}

	resource, err := validateDevice(group, req.DeviceID)
	if err != nil {
		uc.logger.Warn("CreateBooking: device validation failed for group id=%d: %v", groupID, err)
		return nil, err
	}

	endTime := startTime.Add(time.Duration(totalDuration) * time.Minute)

	// Переменная для хранения результата
	var result *domain.Appointment

	// 5. Все операции с БД в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Пациент и баланс баллов
		patient, err := uc.patientRepo.GetByID(txCtx, req.Actor.EffectivePatientID)
		if err != nil {
			if errors.Is(err, patientRepo.ErrPatientNotFound) {
				uc.logger.Warn("CreateBooking: patient id=%d not found", req.Actor.EffectivePatientID)
				return ErrPatientNotFound
			}
			uc.logger.Error("CreateBooking: failed to get patient id=%d: %v", req.Actor.EffectivePatientID, err)
			return fmt.Errorf("%w: failed to get patient: %v", ErrInternal, err)
		}

		var pointsDiscount int64
		if req.PointsToSpend > 0 {
			if patient.Points < req.PointsToSpend {
				uc.logger.Warn("CreateBooking: patient id=%d has %d points, requested %d",
					patient.ID, patient.Points, req.PointsToSpend)
				return ErrInsufficientPoints
			}
			pointsDiscount = int64(req.PointsToSpend) * uc.pointsRate
			if pointsDiscount > totalPrice {
				pointsDiscount = totalPrice
			}
		}

		// 5.2. Код скидки: читаем внутри транзакции, чтобы одноразовый код
		// не был применен двумя записями одновременно
		var code *domain.DiscountCode
		var codeDiscount int64
		if req.DiscountCode != "" {
			code, err = uc.discountRepo.GetByCode(txCtx, req.DiscountCode)
			if err != nil {
				if errors.Is(err, discountRepo.ErrCodeNotFound) {
					uc.logger.Warn("CreateBooking: discount code %q not found", req.DiscountCode)
					return ErrDiscountCodeNotFound
				}
				uc.logger.Error("CreateBooking: failed to get discount code: %v", err)
				return fmt.Errorf("%w: failed to get discount code: %v", ErrInternal, err)
			}

			if !code.IsValid(now) || !code.AvailableFor(patient.ID) {
				uc.logger.Warn("CreateBooking: discount code %q is not applicable for patient id=%d",
					req.DiscountCode, patient.ID)
				return ErrDiscountCodeNotApplicable
			}

			codeDiscount = code.Amount(totalPrice)
		}

		// 5.3. Блокируем занятые интервалы ресурса, пересекающие выбранный
		// интервал. Любая найденная строка означает коллизию: повторный
		// выбор слота остается за вызывающим, без автоматических ретраев
		occupied, err := uc.appointmentRepo.ListOccupied(txCtx, startTime, endTime, resource)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to lock occupied intervals for %s: %v", resource, err)
			return fmt.Errorf("%w: failed to check slot availability: %v", ErrInternal, err)
		}
		if len(occupied) > 0 {
			uc.logger.Warn("CreateBooking: slot %s-%s on %s is already taken",
				startTime.Format(time.RFC3339), endTime.Format(time.RFC3339), resource)
			return ErrSlotTaken
		}

		// 5.4. Создаем запись
		appt := &domain.Appointment{
			PatientID:            patient.ID,
			ServiceIDs:           req.ServiceIDs,
			DeviceID:             resource.DeviceID(),
			TrackingCode:         uuid.NewString(),
			StartTime:            startTime,
			EndTime:              endTime,
			Status:               req.Actor.InitialStatus(),
			PointsDiscountAmount: pointsDiscount,
			PointsUsed:           req.PointsToSpend,
			CodeDiscountAmount:   codeDiscount,
			TotalPrice:           totalPrice,
		}
		if code != nil {
			appt.DiscountCodeID = &code.ID
		}

		created, err := uc.appointmentRepo.Create(txCtx, appt)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 5.5. Побочные эффекты, атомарные с созданием записи
		if req.PointsToSpend > 0 {
			if err := uc.patientRepo.DeductPoints(txCtx, patient.ID, req.PointsToSpend); err != nil {
				if errors.Is(err, patientRepo.ErrInsufficientPoints) {
					return ErrInsufficientPoints
				}
				uc.logger.Error("CreateBooking: failed to deduct points for patient id=%d: %v", patient.ID, err)
				return fmt.Errorf("%w: failed to deduct points: %v", ErrInternal, err)
			}
		}

		if code != nil && code.IsOneTime {
			if err := uc.discountRepo.MarkUsed(txCtx, code.ID); err != nil {
				uc.logger.Error("CreateBooking: failed to mark discount code id=%d used: %v", code.ID, err)
				return fmt.Errorf("%w: failed to mark discount code used: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: created appointment id=%d, status=%s, tracking=%s",
		result.ID, result.Status, result.TrackingCode)

	// 6. Публикация события после коммита: ошибка публикации не должна
	// откатывать уже созданную запись, только логируется
	uc.publishCreated(ctx, result)

	return &Response{
		ID:            result.ID,
		PatientID:     result.PatientID,
		ServiceIDs:    result.ServiceIDs,
		DeviceID:      result.DeviceID,
		TrackingCode:  result.TrackingCode,
		StartTime:     result.StartTime,
		EndTime:       result.EndTime,
		Status:        string(result.Status),
		TotalPrice:    result.TotalPrice,
		TotalDiscount: result.TotalDiscount(),
		PayableAmount: result.PayableAmount(),
		CreatedAt:     result.CreatedAt,
	}, nil
}

func (uc *UseCase) publishCreated(ctx context.Context, appt *domain.Appointment) {
	routingKey := events.RoutingKeyAppointmentCreated
	if appt.Status == domain.StatusConfirmed {
		routingKey = events.RoutingKeyAppointmentConfirmed
	}

	event := events.AppointmentEvent{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		TrackingCode:  appt.TrackingCode,
		Status:        string(appt.Status),
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		OccurredAt:    uc.timeProvider.Now(),
	}

	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		uc.logger.Error("CreateBooking: failed to publish %s for appointment id=%d: %v",
			routingKey, appt.ID, err)
	}
}
