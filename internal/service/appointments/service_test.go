package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	appointmentStorage "github.com/simaclinic/booking-service/internal/infra/storage/appointment"
	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAppointmentRepo struct {
	appointment *domain.Appointment
	list        []*domain.Appointment

	updatedStatus    *domain.AppointmentStatus
	pointsMarked     bool
	lastListDayStart time.Time
	lastListDayEnd   time.Time
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if f.appointment == nil {
		return nil, appointmentStorage.ErrAppointmentNotFound
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error) {
	if f.appointment == nil || f.appointment.TrackingCode != code {
		return nil, appointmentStorage.ErrAppointmentNotFound
	}
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	return f.list, nil
}

func (f *fakeAppointmentRepo) ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Appointment, error) {
	f.lastListDayStart = dayStart
	f.lastListDayEnd = dayEnd
	return f.list, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	f.updatedStatus = &status
	return nil
}

func (f *fakeAppointmentRepo) MarkPointsAwarded(ctx context.Context, id int64) error {
	f.pointsMarked = true
	return nil
}

type fakePatientRepo struct {
	awardedPoints int
	awardCalls    int
}

func (f *fakePatientRepo) AwardPoints(ctx context.Context, patientID int64, points int) error {
	f.awardCalls++
	f.awardedPoints = points
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	routingKeys []string
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, event events.AppointmentEvent) error {
	f.routingKeys = append(f.routingKeys, routingKey)
	return nil
}

func confirmedAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:           5,
		PatientID:    1,
		TrackingCode: "abc-123",
		Status:       domain.StatusConfirmed,
		TotalPrice:   500_000,
	}
}

func newTestService(t *testing.T, repo *fakeAppointmentRepo, patients *fakePatientRepo, publisher *fakePublisher) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	return NewService(repo, patients, fakeTxManager{}, publisher, loc, 10_000, nopLogger{})
}

func TestGetByIDAccess(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: confirmedAppointment()}
	svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

	t.Run("owner", func(t *testing.T) {
		resp, err := svc.GetByID(context.Background(), 5, domain.BookingActor{EffectivePatientID: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.ID)
	})

	t.Run("staff", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 5, domain.BookingActor{EffectivePatientID: 99, IsStaffAssisted: true})
		require.NoError(t, err)
	})

	t.Run("another patient", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), 5, domain.BookingActor{EffectivePatientID: 99})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("not found", func(t *testing.T) {
		empty := &fakeAppointmentRepo{}
		svc := newTestService(t, empty, &fakePatientRepo{}, &fakePublisher{})
		_, err := svc.GetByID(context.Background(), 5, domain.BookingActor{EffectivePatientID: 1})
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestGetByTrackingCode(t *testing.T) {
	repo := &fakeAppointmentRepo{appointment: confirmedAppointment()}
	svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

	resp, err := svc.GetByTrackingCode(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)

	_, err = svc.GetByTrackingCode(context.Background(), "wrong-code")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)

	_, err = svc.GetByTrackingCode(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListPatientAppointments(t *testing.T) {
	repo := &fakeAppointmentRepo{list: []*domain.Appointment{confirmedAppointment()}}
	svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

	t.Run("own history", func(t *testing.T) {
		resp, err := svc.ListPatientAppointments(context.Background(), &models.ListPatientAppointmentsRequest{
			PatientID: 1,
			Actor:     domain.BookingActor{EffectivePatientID: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("foreign history denied", func(t *testing.T) {
		_, err := svc.ListPatientAppointments(context.Background(), &models.ListPatientAppointmentsRequest{
			PatientID: 1,
			Actor:     domain.BookingActor{EffectivePatientID: 2},
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("staff sees any history", func(t *testing.T) {
		_, err := svc.ListPatientAppointments(context.Background(), &models.ListPatientAppointmentsRequest{
			PatientID: 1,
			Actor:     domain.BookingActor{EffectivePatientID: 2, IsStaffAssisted: true},
		})
		require.NoError(t, err)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		bad := "SOMEDAY"
		_, err := svc.ListPatientAppointments(context.Background(), &models.ListPatientAppointmentsRequest{
			PatientID: 1,
			Actor:     domain.BookingActor{EffectivePatientID: 1},
			Status:    &bad,
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestListForDay(t *testing.T) {
	repo := &fakeAppointmentRepo{}
	svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

	t.Run("staff only", func(t *testing.T) {
		_, err := svc.ListForDay(context.Background(), time.Now(), domain.BookingActor{EffectivePatientID: 1})
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("day boundaries in clinic timezone", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tehran")
		require.NoError(t, err)

		date := time.Date(2025, 11, 15, 22, 0, 0, 0, time.UTC) // уже 16 ноября по Тегерану
		_, err = svc.ListForDay(context.Background(), date, domain.BookingActor{EffectivePatientID: 1, IsStaffAssisted: true})
		require.NoError(t, err)

		assert.Equal(t, time.Date(2025, 11, 16, 0, 0, 0, 0, loc), repo.lastListDayStart)
		assert.Equal(t, time.Date(2025, 11, 17, 0, 0, 0, 0, loc), repo.lastListDayEnd)
	})
}

func TestCancel(t *testing.T) {
	t.Run("owner cancels pending appointment", func(t *testing.T) {
		appt := confirmedAppointment()
		appt.Status = domain.StatusPending
		repo := &fakeAppointmentRepo{appointment: appt}
		publisher := &fakePublisher{}
		svc := newTestService(t, repo, &fakePatientRepo{}, publisher)

		err := svc.Cancel(context.Background(), 5, domain.BookingActor{EffectivePatientID: 1})
		require.NoError(t, err)

		require.NotNil(t, repo.updatedStatus)
		assert.Equal(t, domain.StatusCanceled, *repo.updatedStatus)
		assert.Equal(t, []string{events.RoutingKeyAppointmentCanceled}, publisher.routingKeys)
	})

	t.Run("terminal appointment cannot be cancelled", func(t *testing.T) {
		appt := confirmedAppointment()
		appt.Status = domain.StatusDone
		repo := &fakeAppointmentRepo{appointment: appt}
		svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

		err := svc.Cancel(context.Background(), 5, domain.BookingActor{EffectivePatientID: 1})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Nil(t, repo.updatedStatus)
	})

	t.Run("foreign appointment denied", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment()}
		svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

		err := svc.Cancel(context.Background(), 5, domain.BookingActor{EffectivePatientID: 2})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestComplete(t *testing.T) {
	staff := domain.BookingActor{EffectivePatientID: 9, IsStaffAssisted: true}

	t.Run("confirmed appointment earns points", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment()}
		patients := &fakePatientRepo{}
		publisher := &fakePublisher{}
		svc := newTestService(t, repo, patients, publisher)

		err := svc.Complete(context.Background(), 5, staff)
		require.NoError(t, err)

		require.NotNil(t, repo.updatedStatus)
		assert.Equal(t, domain.StatusDone, *repo.updatedStatus)
		// 500000 / 10000 = 50 баллов
		assert.Equal(t, 50, patients.awardedPoints)
		assert.True(t, repo.pointsMarked)
		assert.Equal(t, []string{events.RoutingKeyAppointmentCompleted}, publisher.routingKeys)
	})

	t.Run("points awarded only once", func(t *testing.T) {
		appt := confirmedAppointment()
		appt.PointsAwarded = true
		repo := &fakeAppointmentRepo{appointment: appt}
		patients := &fakePatientRepo{}
		svc := newTestService(t, repo, patients, &fakePublisher{})

		err := svc.Complete(context.Background(), 5, staff)
		require.NoError(t, err)
		assert.Equal(t, 0, patients.awardCalls)
	})

	t.Run("discounts reduce earned points", func(t *testing.T) {
		appt := confirmedAppointment()
		appt.PointsDiscountAmount = 200_000
		repo := &fakeAppointmentRepo{appointment: appt}
		patients := &fakePatientRepo{}
		svc := newTestService(t, repo, patients, &fakePublisher{})

		err := svc.Complete(context.Background(), 5, staff)
		require.NoError(t, err)
		// Баллы начисляются с оплаченной суммы: (500000-200000) / 10000
		assert.Equal(t, 30, patients.awardedPoints)
	})

	t.Run("staff only", func(t *testing.T) {
		repo := &fakeAppointmentRepo{appointment: confirmedAppointment()}
		svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

		err := svc.Complete(context.Background(), 5, domain.BookingActor{EffectivePatientID: 1})
		assert.ErrorIs(t, err, ErrStaffOnly)
	})

	t.Run("pending appointment cannot be completed", func(t *testing.T) {
		appt := confirmedAppointment()
		appt.Status = domain.StatusPending
		repo := &fakeAppointmentRepo{appointment: appt}
		svc := newTestService(t, repo, &fakePatientRepo{}, &fakePublisher{})

		err := svc.Complete(context.Background(), 5, staff)
		assert.ErrorIs(t, err, ErrCannotComplete)
	})
}
