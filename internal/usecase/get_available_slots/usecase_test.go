package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	scheduleRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

type fakeBookingRepo struct {
	existing []*domain.Booking
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.existing, nil
}

type fakeScheduleRepo struct {
	weekly   *domain.WeeklySchedule
	override *domain.SpecialDayOverride
}

func (f *fakeScheduleRepo) GetWeeklySchedule(_ context.Context, _ int64) (*domain.WeeklySchedule, error) {
	if f.weekly == nil {
		return nil, scheduleRepoPkg.ErrScheduleNotFound
	}
	return f.weekly, nil
}

func (f *fakeScheduleRepo) GetSpecialDay(_ context.Context, _ int64, _ time.Time) (*domain.SpecialDayOverride, error) {
	if f.override == nil {
		return nil, scheduleRepoPkg.ErrSpecialDayNotFound
	}
	return f.override, nil
}

type fakeCatalogClient struct {
	business *catalogservice.Business
	services []*catalogservice.Service
}

func (f *fakeCatalogClient) GetBusiness(_ context.Context, _ int64) (*catalogservice.Business, error) {
	if f.business == nil {
		return nil, catalogservice.ErrBusinessNotFound
	}
	return f.business, nil
}

func (f *fakeCatalogClient) GetActiveServices(_ context.Context, _ int64, _ []int64) ([]*catalogservice.Service, error) {
	return f.services, nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (f *fixedTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func mustTS(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

// Понедельник 09:00-12:00 с перерывом 10:00-10:30
func testWeekly(t *testing.T) *domain.WeeklySchedule {
	t.Helper()
	return &domain.WeeklySchedule{
		BusinessID: 1,
		Days: map[time.Weekday]domain.DaySchedule{
			time.Monday: {
				Weekday:   time.Monday,
				IsOpen:    true,
				OpenTime:  mustTS(t, "09:00"),
				CloseTime: mustTS(t, "12:00"),
				Breaks: []domain.BreakInterval{
					{Start: mustTS(t, "10:00"), End: mustTS(t, "10:30")},
				},
			},
		},
	}
}

func testServices() []*catalogservice.Service {
	return []*catalogservice.Service{
		{ID: 10, BusinessID: 1, Name: "Стрижка", DurationMinutes: 30, Price: 1500, IsActive: true},
	}
}

func newTestUseCase(
	bookingRepo *fakeBookingRepo,
	scheduleRepo *fakeScheduleRepo,
	catalog *fakeCatalogClient,
	now time.Time,
) *UseCase {
	uc := NewUseCase(
		bookingRepo,
		scheduleRepo,
		catalog,
		Defaults{GranularityMinutes: 30, LeadTimeMinutes: 0},
		time.UTC,
		nopLogger{},
	)
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func validRequest() *Request {
	return &Request{
		BusinessID: 1,
		ServiceIDs: []int64{10},
		Date:       time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), // понедельник
	}
}

func slotStarts(slots []domain.AvailableSlot) []string {
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime.String())
	}
	return starts
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 30, resp.DurationMinutes)
	// Перерыв 10:00-10:30 выбивает один слот из сетки
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slotStarts(resp.Slots))
}

func TestExecute_OccupiedBookingRemovesSlots(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		existing: []*domain.Booking{
			{ID: 5, Status: domain.StatusConfirmed, StartTime: mustTS(t, "11:00"), EndTime: mustTS(t, "11:30")},
		},
	}

	uc := newTestUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:30"}, slotStarts(resp.Slots))
}

func TestExecute_ClosedOverrideReturnsEmpty(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	scheduleRepo := &fakeScheduleRepo{
		weekly:   testWeekly(t),
		override: &domain.SpecialDayOverride{BusinessID: 1, IsClosed: true},
	}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		scheduleRepo,
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	assert.NotNil(t, resp.Slots)
}

func TestExecute_OverrideWindowReplacesWeekly(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	scheduleRepo := &fakeScheduleRepo{
		weekly: testWeekly(t),
		override: &domain.SpecialDayOverride{
			BusinessID: 1,
			IsClosed:   false,
			OpenTime:   mustTS(t, "14:00"),
			CloseTime:  mustTS(t, "15:00"),
		},
	}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		scheduleRepo,
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	// Окно переопределения действует целиком, перерывы недельного дня не наследуются
	assert.Equal(t, []string{"14:00", "14:30"}, slotStarts(resp.Slots))
}

func TestExecute_NoWeeklyScheduleMeansClosed(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{},
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_BusinessGranularityOverridesDefault(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	business := &catalogservice.Business{ID: 1, SlotGranularityMinutes: 60}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: business, services: testServices()},
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slotStarts(resp.Slots))
}

func TestExecute_LimitTruncatesSlots(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	req := validRequest()
	req.Limit = 2

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slotStarts(resp.Slots))
}

func TestExecute_BusinessNotFound(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: &catalogservice.Business{ID: 1}, services: testServices()},
		now,
	)

	req := validRequest()
	req.ServiceIDs = nil

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
