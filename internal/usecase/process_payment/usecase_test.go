package process_payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/internal/integrations/events"
	paymentStorage "github.com/simaclinic/booking-service/internal/infra/storage/payment"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAppointmentRepo struct {
	appointment *domain.Appointment

	updatedStatus *domain.AppointmentStatus
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return f.appointment, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	f.updatedStatus = &status
	return nil
}

type fakePaymentRepo struct {
	tx *domain.PaymentTransaction

	authority     string
	statusSet     *domain.PaymentStatus
	refIDSet      *string
	upsertedAmount int64
}

func (f *fakePaymentRepo) UpsertForAppointment(ctx context.Context, appointmentID, amount int64) (*domain.PaymentTransaction, error) {
	f.upsertedAmount = amount
	f.tx = &domain.PaymentTransaction{ID: 1, AppointmentID: appointmentID, Amount: amount, Status: domain.PaymentPending}
	return f.tx, nil
}

func (f *fakePaymentRepo) SetAuthority(ctx context.Context, id int64, authority string) error {
	f.authority = authority
	return nil
}

func (f *fakePaymentRepo) SetStatus(ctx context.Context, id int64, status domain.PaymentStatus, refID *string) error {
	f.statusSet = &status
	f.refIDSet = refID
	return nil
}

func (f *fakePaymentRepo) GetByAuthority(ctx context.Context, authority string) (*domain.PaymentTransaction, error) {
	if f.tx == nil || f.tx.Authority == nil || *f.tx.Authority != authority {
		return nil, paymentStorage.ErrTransactionNotFound
	}
	return f.tx, nil
}

type fakeGateway struct {
	authority string
	payURL    string
	refID     string

	requestErr error
	verifyErr  error
}

func (f *fakeGateway) RequestPayment(ctx context.Context, amount int64, description string) (string, string, error) {
	if f.requestErr != nil {
		return "", "", f.requestErr
	}
	return f.authority, f.payURL, nil
}

func (f *fakeGateway) VerifyPayment(ctx context.Context, amount int64, authority string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.refID, nil
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

func pendingAppointment() *domain.Appointment {
	return &domain.Appointment{
		ID:           5,
		PatientID:    1,
		TrackingCode: "abc-123",
		Status:       domain.StatusPending,
		TotalPrice:   300_000,
	}
}

type fixture struct {
	appointments *fakeAppointmentRepo
	payments     *fakePaymentRepo
	gateway      *fakeGateway
	publisher    *fakePublisher

	uc *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		appointments: &fakeAppointmentRepo{appointment: pendingAppointment()},
		payments:     &fakePaymentRepo{},
		gateway:      &fakeGateway{authority: "A0001", payURL: "https://gateway/pg/StartPay/A0001", refID: "REF42"},
		publisher:    &fakePublisher{},
	}
	f.uc = NewUseCase(f.appointments, f.payments, f.gateway, fakeTxManager{}, f.publisher, nopLogger{})
	return f
}

func TestStartReturnsPaymentURL(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Start(context.Background(), &StartRequest{
		Actor:         domain.BookingActor{EffectivePatientID: 1},
		AppointmentID: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(300_000), resp.Amount)
	assert.Equal(t, "https://gateway/pg/StartPay/A0001", resp.PaymentURL)
	assert.Equal(t, string(domain.StatusPending), resp.Status)

	assert.Equal(t, int64(300_000), f.payments.upsertedAmount)
	assert.Equal(t, "A0001", f.payments.authority)
}

func TestStartZeroPayableConfirmsImmediately(t *testing.T) {
	f := newFixture()
	f.appointments.appointment.PointsDiscountAmount = 300_000

	resp, err := f.uc.Start(context.Background(), &StartRequest{
		Actor:         domain.BookingActor{EffectivePatientID: 1},
		AppointmentID: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.Amount)
	assert.Empty(t, resp.PaymentURL)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)

	require.NotNil(t, f.appointments.updatedStatus)
	assert.Equal(t, domain.StatusConfirmed, *f.appointments.updatedStatus)
	assert.Equal(t, []string{events.RoutingKeyAppointmentConfirmed}, f.publisher.routingKeys)
	assert.Nil(t, f.payments.tx, "no gateway transaction for zero amount")
}

func TestStartAccessAndStatusChecks(t *testing.T) {
	t.Run("foreign appointment denied", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Start(context.Background(), &StartRequest{
			Actor:         domain.BookingActor{EffectivePatientID: 2},
			AppointmentID: 5,
		})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("staff pays on behalf of patient", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Start(context.Background(), &StartRequest{
			Actor:         domain.BookingActor{EffectivePatientID: 2, IsStaffAssisted: true},
			AppointmentID: 5,
		})
		require.NoError(t, err)
	})

	t.Run("confirmed appointment is not payable", func(t *testing.T) {
		f := newFixture()
		f.appointments.appointment.Status = domain.StatusConfirmed
		_, err := f.uc.Start(context.Background(), &StartRequest{
			Actor:         domain.BookingActor{EffectivePatientID: 1},
			AppointmentID: 5,
		})
		assert.ErrorIs(t, err, ErrNotPayable)
	})
}

func TestStartGatewayFailure(t *testing.T) {
	f := newFixture()
	f.gateway.requestErr = errors.New("timeout")

	_, err := f.uc.Start(context.Background(), &StartRequest{
		Actor:         domain.BookingActor{EffectivePatientID: 1},
		AppointmentID: 5,
	})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	require.NotNil(t, f.payments.statusSet)
	assert.Equal(t, domain.PaymentFailed, *f.payments.statusSet)
}

func TestHandleCallbackSuccess(t *testing.T) {
	f := newFixture()
	authority := "A0001"
	f.payments.tx = &domain.PaymentTransaction{
		ID:            1,
		AppointmentID: 5,
		Amount:        300_000,
		Authority:     &authority,
		Status:        domain.PaymentPending,
	}

	resp, err := f.uc.HandleCallback(context.Background(), &CallbackRequest{
		Authority: "A0001",
		GatewayOK: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "REF42", resp.RefID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, "abc-123", resp.TrackingCode)

	require.NotNil(t, f.payments.statusSet)
	assert.Equal(t, domain.PaymentSuccess, *f.payments.statusSet)
	require.NotNil(t, f.payments.refIDSet)
	assert.Equal(t, "REF42", *f.payments.refIDSet)

	require.NotNil(t, f.appointments.updatedStatus)
	assert.Equal(t, domain.StatusConfirmed, *f.appointments.updatedStatus)
	assert.Equal(t, []string{events.RoutingKeyAppointmentConfirmed}, f.publisher.routingKeys)
}

func TestHandleCallbackGatewayDeclined(t *testing.T) {
	f := newFixture()
	authority := "A0001"
	f.payments.tx = &domain.PaymentTransaction{
		ID:            1,
		AppointmentID: 5,
		Amount:        300_000,
		Authority:     &authority,
		Status:        domain.PaymentPending,
	}

	resp, err := f.uc.HandleCallback(context.Background(), &CallbackRequest{
		Authority: "A0001",
		GatewayOK: false,
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	assert.Equal(t, string(domain.StatusCanceled), resp.Status)

	require.NotNil(t, f.payments.statusSet)
	assert.Equal(t, domain.PaymentFailed, *f.payments.statusSet)
	require.NotNil(t, f.appointments.updatedStatus)
	assert.Equal(t, domain.StatusCanceled, *f.appointments.updatedStatus)
	assert.Equal(t, []string{events.RoutingKeyAppointmentCanceled}, f.publisher.routingKeys)
}

func TestHandleCallbackVerifyFailure(t *testing.T) {
	f := newFixture()
	authority := "A0001"
	f.payments.tx = &domain.PaymentTransaction{
		ID:            1,
		AppointmentID: 5,
		Amount:        300_000,
		Authority:     &authority,
		Status:        domain.PaymentPending,
	}
	f.gateway.verifyErr = errors.New("payment declined")

	resp, err := f.uc.HandleCallback(context.Background(), &CallbackRequest{
		Authority: "A0001",
		GatewayOK: true,
	})
	require.NoError(t, err)

	assert.False(t, resp.Success)
	require.NotNil(t, f.appointments.updatedStatus)
	assert.Equal(t, domain.StatusCanceled, *f.appointments.updatedStatus)
}

func TestHandleCallbackUnknownAuthority(t *testing.T) {
	f := newFixture()

	_, err := f.uc.HandleCallback(context.Background(), &CallbackRequest{
		Authority: "UNKNOWN",
		GatewayOK: true,
	})
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestHandleCallbackConfirmedAppointmentStaysConfirmed(t *testing.T) {
	// Повторный callback после успешного подтверждения не меняет статус записи
	f := newFixture()
	f.appointments.appointment.Status = domain.StatusConfirmed
	authority := "A0001"
	f.payments.tx = &domain.PaymentTransaction{
		ID:            1,
		AppointmentID: 5,
		Amount:        300_000,
		Authority:     &authority,
		Status:        domain.PaymentSuccess,
	}

	resp, err := f.uc.HandleCallback(context.Background(), &CallbackRequest{
		Authority: "A0001",
		GatewayOK: true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Nil(t, f.appointments.updatedStatus, "status update skipped for non-pending appointment")
}
