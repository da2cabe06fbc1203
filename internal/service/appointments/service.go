package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	appointmentRepo "github.com/simaclinic/booking-service/internal/infra/storage/appointment"
	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

// Service сервис жизненного цикла записей на прием
type Service struct {
	appointmentRepo AppointmentRepository
	patientRepo     PatientRepository
	txManager       TransactionManager
	publisher       EventPublisher
	logger          Logger

	// loc фиксированная таймзона клиники
	loc *time.Location

	// pointsEarnRate сколько томанов оплаченной записи дают один бонусный балл
	pointsEarnRate int64
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	patientRepo PatientRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	loc *time.Location,
	pointsEarnRate int64,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		txManager:       txManager,
		publisher:       publisher,
		logger:          logger,
		loc:             loc,
		pointsEarnRate:  pointsEarnRate,
	}
}

// GetByID получает запись по ID
// Пациент видит только свои записи, сотрудник - любые
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.BookingActor) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for patient=%d", id, actor.EffectivePatientID)

	appt, err := s.getAppointment(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if err := s.checkAccess(appt, actor); err != nil {
		s.logger.Warn("GetByID: access denied for patient=%d to appointment id=%d", actor.EffectivePatientID, id)
		return nil, err
	}

	return models.FromDomainAppointment(appt), nil
}

// GetByTrackingCode получает запись по коду отслеживания
// Доступно без аккаунта: код и есть секрет гостя
func (s *Service) GetByTrackingCode(ctx context.Context, code string) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByTrackingCode: fetching appointment by tracking code")

	if code == "" {
		return nil, fmt.Errorf("%w: tracking code is required", ErrInvalidInput)
	}

	appt, err := s.appointmentRepo.GetByTrackingCode(ctx, code)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetByTrackingCode: appointment not found")
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByTrackingCode: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetByTrackingCode - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointment(appt), nil
}

// ListPatientAppointments получает историю записей пациента
// Опционально фильтрует по статусу
func (s *Service) ListPatientAppointments(ctx context.Context, req *models.ListPatientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListPatientAppointments: fetching appointments for patient=%d, status=%v", req.PatientID, req.Status)

	if req.PatientID != req.Actor.EffectivePatientID && !req.Actor.IsStaffAssisted {
		s.logger.Warn("ListPatientAppointments: access denied for patient=%d to history of patient=%d",
			req.Actor.EffectivePatientID, req.PatientID)
		return nil, ErrAccessDenied
	}

	var status *domain.AppointmentStatus
	if req.Status != nil {
		converted, ok := models.ToDomainStatus(*req.Status)
		if !ok {
			s.logger.Warn("ListPatientAppointments: invalid status=%s for patient=%d", *req.Status, req.PatientID)
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, *req.Status)
		}
		status = &converted
	}

	appts, err := s.appointmentRepo.ListByPatient(ctx, req.PatientID, status)
	if err != nil {
		s.logger.Error("ListPatientAppointments: repository error for patient=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: ListPatientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListPatientAppointments: fetched %d appointments for patient=%d", len(appts), req.PatientID)
	return models.FromDomainAppointmentList(appts), nil
}

// ListForDay получает все записи клиники на календарный день
// Доступно только персоналу (дневная сетка ресепшена)
func (s *Service) ListForDay(ctx context.Context, date time.Time, actor domain.BookingActor) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListForDay: fetching appointments for %s", date.Format(domain.DateFormat))

	if !actor.IsStaffAssisted {
		s.logger.Warn("ListForDay: denied for non-staff patient=%d", actor.EffectivePatientID)
		return nil, ErrStaffOnly
	}

	local := date.In(s.loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appts, err := s.appointmentRepo.ListForDay(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("ListForDay: repository error for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: ListForDay - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(appts), nil
}

// Cancel отменяет запись
// Пациент отменяет только свою запись, сотрудник - любую
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.BookingActor) error {
	s.logger.Info("Cancel: cancelling appointment id=%d by patient=%d", id, actor.EffectivePatientID)

	appt, err := s.getAppointment(ctx, "Cancel", id)
	if err != nil {
		return err
	}

	if err := s.checkAccess(appt, actor); err != nil {
		s.logger.Warn("Cancel: access denied for patient=%d to appointment id=%d", actor.EffectivePatientID, id)
		return err
	}

	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appt.Status)
		return ErrCannotCancel
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, id, domain.StatusCanceled); err != nil {
		s.logger.Error("Cancel: repository error for appointment id=%d: %v", id, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.publish(ctx, appt, events.RoutingKeyAppointmentCanceled, domain.StatusCanceled)
	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return nil
}

// Complete отмечает визит состоявшимся и начисляет бонусные баллы
// Доступно только персоналу; DONE достижим только из CONFIRMED.
// Начисление баллов однократное: повторный вызов для той же записи
// баллы не удваивает
func (s *Service) Complete(ctx context.Context, id int64, actor domain.BookingActor) error {
	s.logger.Info("Complete: completing appointment id=%d by patient=%d", id, actor.EffectivePatientID)

	if !actor.IsStaffAssisted {
		s.logger.Warn("Complete: denied for non-staff patient=%d", actor.EffectivePatientID)
		return ErrStaffOnly
	}

	appt, err := s.getAppointment(ctx, "Complete", id)
	if err != nil {
		return err
	}

	if !appt.CanBeCompleted() {
		s.logger.Warn("Complete: appointment id=%d cannot be completed, status=%s", id, appt.Status)
		return ErrCannotComplete
	}

	earned := 0
	if s.pointsEarnRate > 0 {
		earned = int(appt.PayableAmount() / s.pointsEarnRate)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.appointmentRepo.UpdateStatus(txCtx, id, domain.StatusDone); err != nil {
			return fmt.Errorf("%w: Complete - failed to update status: %v", ErrInternal, err)
		}

		if earned > 0 && !appt.PointsAwarded {
			if err := s.appointmentRepo.MarkPointsAwarded(txCtx, id); err != nil {
				return fmt.Errorf("%w: Complete - failed to mark points awarded: %v", ErrInternal, err)
			}
			if err := s.patientRepo.AwardPoints(txCtx, appt.PatientID, earned); err != nil {
				return fmt.Errorf("%w: Complete - failed to award points: %v", ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Complete: failed for appointment id=%d: %v", id, err)
		return err
	}

	s.publish(ctx, appt, events.RoutingKeyAppointmentCompleted, domain.StatusDone)
	s.logger.Info("Complete: appointment id=%d done, awarded %d points to patient=%d", id, earned, appt.PatientID)
	return nil
}

// Вспомогательные методы

func (s *Service) getAppointment(ctx context.Context, op string, id int64) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}

// checkAccess проверяет, что actor имеет доступ к записи:
// владелец записи или сотрудник
func (s *Service) checkAccess(appt *domain.Appointment, actor domain.BookingActor) error {
	if appt.PatientID == actor.EffectivePatientID || actor.IsStaffAssisted {
		return nil
	}
	return ErrAccessDenied
}

func (s *Service) publish(ctx context.Context, appt *domain.Appointment, routingKey string, status domain.AppointmentStatus) {
	event := events.AppointmentEvent{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		TrackingCode:  appt.TrackingCode,
		Status:        string(status),
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		OccurredAt:    time.Now().In(s.loc),
	}

	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Error("Failed to publish %s for appointment id=%d: %v", routingKey, appt.ID, err)
	}
}
