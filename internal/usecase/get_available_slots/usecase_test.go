package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ now time.Time }

func (p fixedTime) Now() time.Time { return p.now }

type fakeCatalogRepo struct {
	services []*domain.Service
	group    *domain.ServiceGroup

	serviceWorkHours []*domain.WorkHours
	groupWorkHours   []*domain.WorkHours

	servicesErr error

	lastScopes      []domain.GenderScope
	groupHoursCalls int
}

func (f *fakeCatalogRepo) GetServicesByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error) {
	if f.servicesErr != nil {
		return nil, f.servicesErr
	}
	return f.services, nil
}

func (f *fakeCatalogRepo) GetGroupByID(ctx context.Context, id int64) (*domain.ServiceGroup, error) {
	return f.group, nil
}

func (f *fakeCatalogRepo) ListServiceWorkHours(ctx context.Context, serviceID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error) {
	f.lastScopes = scopes
	return f.serviceWorkHours, nil
}

func (f *fakeCatalogRepo) ListGroupWorkHours(ctx context.Context, groupID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error) {
	f.groupHoursCalls++
	return f.groupWorkHours, nil
}

type fakeAppointmentRepo struct {
	occupied []domain.Interval
	err      error

	lastResource domain.ResourceSelector
}

func (f *fakeAppointmentRepo) ListOccupied(ctx context.Context, from, to time.Time, resource domain.ResourceSelector) ([]domain.Interval, error) {
	f.lastResource = resource
	if f.err != nil {
		return nil, f.err
	}
	return f.occupied, nil
}

func tehran(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	return loc
}

func workHours(day int, start, end string) *domain.WorkHours {
	return &domain.WorkHours{
		DayOfWeek:   day,
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		GenderScope: domain.GenderScopeAll,
	}
}

// Суббота 15 ноября 2025 = день недели клиники 0
var saturday = time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC)

func newTestUseCase(catalog *fakeCatalogRepo, appointments *fakeAppointmentRepo, loc *time.Location, now time.Time) *UseCase {
	uc := NewUseCase(catalog, appointments, loc, domain.GenderScopeAll, nopLogger{})
	uc.timeProvider = fixedTime{now: now}
	return uc
}

func TestExecuteGeneratesSlotsForWorkingPeriod(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	require.Len(t, resp.Days, 1)
	slots, ok := resp.Days["1404-08-24"]
	require.True(t, ok, "day key must be a Jalali date")
	require.Len(t, slots, 2)

	assert.Equal(t, time.Date(2025, 11, 15, 9, 0, 0, 0, loc), slots[0].Start)
	assert.Equal(t, time.Date(2025, 11, 15, 9, 30, 0, 0, loc), slots[0].End)
	assert.Equal(t, time.Date(2025, 11, 15, 9, 30, 0, 0, loc), slots[1].Start)
	assert.Equal(t, time.Date(2025, 11, 15, 10, 0, 0, 0, loc), slots[1].End)
	assert.NotEmpty(t, slots[0].ReadableStart)
}

func TestExecuteSkipsOccupiedSlots(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}
	appointments := &fakeAppointmentRepo{
		occupied: []domain.Interval{{
			Start: time.Date(2025, 11, 15, 9, 0, 0, 0, loc),
			End:   time.Date(2025, 11, 15, 9, 30, 0, 0, loc),
		}},
	}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	slots := resp.Days["1404-08-24"]
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 11, 15, 9, 30, 0, 0, loc), slots[0].Start)
}

func TestExecutePastCandidatesAdvanceCursor(t *testing.T) {
	loc := tehran(t)
	// 09:10 - первый кандидат уже в прошлом, но сетка слотов не сдвигается
	now := time.Date(2025, 11, 15, 9, 10, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	slots := resp.Days["1404-08-24"]
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 11, 15, 9, 30, 0, 0, loc), slots[0].Start)
}

func TestExecuteSlotMustFitInsidePeriod(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services: []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:    &domain.ServiceGroup{ID: 10},
		// 45-минутная смена вмещает ровно один 30-минутный слот
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "09:45")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	slots := resp.Days["1404-08-24"]
	require.Len(t, slots, 1)
	assert.Equal(t, time.Date(2025, 11, 15, 9, 0, 0, 0, loc), slots[0].Start)
}

func TestExecuteSplitShiftsGenerateIndependently(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services: []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:    &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{
			workHours(0, "09:00", "10:00"),
			workHours(0, "14:00", "15:00"),
		},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	slots := resp.Days["1404-08-24"]
	require.Len(t, slots, 4)
	// Слоты не перетекают через перерыв между сменами
	assert.Equal(t, time.Date(2025, 11, 15, 9, 30, 0, 0, loc), slots[1].Start)
	assert.Equal(t, time.Date(2025, 11, 15, 14, 0, 0, 0, loc), slots[2].Start)
}

func TestExecuteMultipleServicesSumDuration(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services: []*domain.Service{
			{ID: 1, GroupID: 10, DurationMinutes: 30},
			{ID: 2, GroupID: 10, DurationMinutes: 30},
		},
		group:            &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "11:00")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1, 2},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	slots := resp.Days["1404-08-24"]
	require.Len(t, slots, 2)
	assert.Equal(t, time.Hour, slots[0].End.Sub(slots[0].Start))
}

func TestExecuteDeviceResource(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)
	deviceID := int64(2)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10, HasDevices: true, AvailableDeviceIDs: []int64{1, 2}},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		DeviceID:   &deviceID,
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	assert.Len(t, resp.Days["1404-08-24"], 2)
	assert.Equal(t, "device-2", appointments.lastResource.String())
}

// resourceKeyedAppointmentRepo выдает занятые интервалы по ключу ресурса:
// записи разных аппаратов не видят друг друга
type resourceKeyedAppointmentRepo struct {
	occupiedByResource map[string][]domain.Interval
}

func (f *resourceKeyedAppointmentRepo) ListOccupied(ctx context.Context, from, to time.Time, resource domain.ResourceSelector) ([]domain.Interval, error) {
	return f.occupiedByResource[resource.String()], nil
}

func TestExecuteDifferentDevicesDoNotCollide(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	newCatalog := func() *fakeCatalogRepo {
		return &fakeCatalogRepo{
			services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
			group:            &domain.ServiceGroup{ID: 10, HasDevices: true, AvailableDeviceIDs: []int64{1, 2}},
			serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
		}
	}

	appointments := &resourceKeyedAppointmentRepo{
		occupiedByResource: map[string][]domain.Interval{
			"device-1": {{
				Start: time.Date(2025, 11, 15, 9, 0, 0, 0, loc),
				End:   time.Date(2025, 11, 15, 9, 30, 0, 0, loc),
			}},
		},
	}

	request := func(deviceID int64) *Request {
		return &Request{
			ServiceIDs: []int64{1},
			DeviceID:   &deviceID,
			StartDate:  saturday,
			EndDate:    saturday,
		}
	}

	ucD1 := NewUseCase(newCatalog(), appointments, loc, domain.GenderScopeAll, nopLogger{})
	ucD1.timeProvider = fixedTime{now: now}

	respD1, err := ucD1.Execute(context.Background(), request(1))
	require.NoError(t, err)
	require.Len(t, respD1.Days["1404-08-24"], 1, "occupied interval hides 09:00 slot for device 1")

	ucD2 := NewUseCase(newCatalog(), appointments, loc, domain.GenderScopeAll, nopLogger{})
	ucD2.timeProvider = fixedTime{now: now}

	respD2, err := ucD2.Execute(context.Background(), request(2))
	require.NoError(t, err)
	assert.Len(t, respD2.Days["1404-08-24"], 2, "device 2 keeps the full grid")
}

func TestExecuteDeviceRequiredButMissing(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10, HasDevices: true, AvailableDeviceIDs: []int64{1}},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}

	uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Days)
}

func TestExecuteDisallowedDevice(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)
	deviceID := int64(99)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10, HasDevices: true, AvailableDeviceIDs: []int64{1, 2}},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}

	uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		DeviceID:   &deviceID,
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Days)
}

func TestExecuteFallsBackToGroupWorkHours(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:       []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:          &domain.ServiceGroup{ID: 10},
		groupWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}
	appointments := &fakeAppointmentRepo{}

	uc := newTestUseCase(catalog, appointments, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.groupHoursCalls)
	assert.Len(t, resp.Days["1404-08-24"], 2)
}

func TestExecuteGenderScopes(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)
	female := domain.GenderFemale

	tests := []struct {
		name       string
		gender     *domain.Gender
		guestScope domain.GenderScope
		want       []domain.GenderScope
	}{
		{
			name:       "guest sees only shared intervals",
			gender:     nil,
			guestScope: domain.GenderScopeAll,
			want:       []domain.GenderScope{domain.GenderScopeAll},
		},
		{
			name:       "female patient sees shared and female intervals",
			gender:     &female,
			guestScope: domain.GenderScopeAll,
			want:       []domain.GenderScope{domain.GenderScopeAll, domain.GenderScopeFemale},
		},
		{
			name:       "guest scope policy widens guest access",
			gender:     nil,
			guestScope: domain.GenderScopeFemale,
			want:       []domain.GenderScope{domain.GenderScopeAll, domain.GenderScopeFemale},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalogRepo{
				services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
				group:            &domain.ServiceGroup{ID: 10},
				serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
			}

			uc := NewUseCase(catalog, &fakeAppointmentRepo{}, loc, tt.guestScope, nopLogger{})
			uc.timeProvider = fixedTime{now: now}

			_, err := uc.Execute(context.Background(), &Request{
				ServiceIDs: []int64{1},
				Gender:     tt.gender,
				StartDate:  saturday,
				EndDate:    saturday,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, catalog.lastScopes)
		})
	}
}

func TestExecuteDaysWithoutSlotsOmitted(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services: []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:    &domain.ServiceGroup{ID: 10},
		// Часы только на субботу; воскресенье в ответ не попадает
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}

	uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	require.Len(t, resp.Days, 1)
	assert.Contains(t, resp.Days, "1404-08-24")
}

func TestExecuteValidationErrors(t *testing.T) {
	loc := tehran(t)
	uc := newTestUseCase(&fakeCatalogRepo{}, &fakeAppointmentRepo{}, loc, time.Now())

	_, err := uc.Execute(context.Background(), &Request{
		StartDate: saturday,
		EndDate:   saturday,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{
		ServiceIDs: []int64{1},
		StartDate:  saturday,
		EndDate:    saturday.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestExecuteDegradesToEmptyOnFailures(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	t.Run("catalog failure", func(t *testing.T) {
		catalog := &fakeCatalogRepo{servicesErr: errors.New("connection refused")}

		uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

		resp, err := uc.Execute(context.Background(), &Request{
			ServiceIDs: []int64{1},
			StartDate:  saturday,
			EndDate:    saturday,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Days)
	})

	t.Run("occupied intervals failure", func(t *testing.T) {
		catalog := &fakeCatalogRepo{
			services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
			group:            &domain.ServiceGroup{ID: 10},
			serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
		}
		appointments := &fakeAppointmentRepo{err: errors.New("deadlock detected")}

		uc := newTestUseCase(catalog, appointments, loc, now)

		resp, err := uc.Execute(context.Background(), &Request{
			ServiceIDs: []int64{1},
			StartDate:  saturday,
			EndDate:    saturday,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Days)
	})

	t.Run("services from different groups", func(t *testing.T) {
		catalog := &fakeCatalogRepo{
			services: []*domain.Service{
				{ID: 1, GroupID: 10, DurationMinutes: 30},
				{ID: 2, GroupID: 20, DurationMinutes: 30},
			},
		}

		uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

		resp, err := uc.Execute(context.Background(), &Request{
			ServiceIDs: []int64{1, 2},
			StartDate:  saturday,
			EndDate:    saturday,
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Days)
	})
}

func TestExecuteIsReadOnly(t *testing.T) {
	loc := tehran(t)
	now := time.Date(2025, 11, 15, 8, 0, 0, 0, loc)

	catalog := &fakeCatalogRepo{
		services:         []*domain.Service{{ID: 1, GroupID: 10, DurationMinutes: 30}},
		group:            &domain.ServiceGroup{ID: 10},
		serviceWorkHours: []*domain.WorkHours{workHours(0, "09:00", "10:00")},
	}

	uc := newTestUseCase(catalog, &fakeAppointmentRepo{}, loc, now)

	req := &Request{ServiceIDs: []int64{1}, StartDate: saturday, EndDate: saturday}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Days, second.Days)
}
