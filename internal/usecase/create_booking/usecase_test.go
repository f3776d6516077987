package create_booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	scheduleRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/txmanager"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

type fakeBookingRepo struct {
	existing    []*domain.Booking
	created     *domain.Booking
	createCalls int
}

func (f *fakeBookingRepo) Create(_ context.Context, bk *domain.Booking) (*domain.Booking, error) {
	f.createCalls++
	created := *bk
	created.ID = 101
	f.created = &created
	return &created, nil
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

type fakeNotifyClient struct {
	events []notifyservice.EventType
}

func (f *fakeNotifyClient) DispatchAsync(eventType notifyservice.EventType, _, _, _ int64) {
	f.events = append(f.events, eventType)
}

type fakeTxManager struct{}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
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

// Понедельник 09:00-18:00 с перерывом 12:00-13:00
func testWeekly(t *testing.T) *domain.WeeklySchedule {
	t.Helper()
	return &domain.WeeklySchedule{
		BusinessID: 1,
		Days: map[time.Weekday]domain.DaySchedule{
			time.Monday: {
				Weekday:   time.Monday,
				IsOpen:    true,
				OpenTime:  mustTS(t, "09:00"),
				CloseTime: mustTS(t, "18:00"),
				Breaks: []domain.BreakInterval{
					{Start: mustTS(t, "12:00"), End: mustTS(t, "13:00")},
				},
			},
		},
	}
}

func testBusiness() *catalogservice.Business {
	return &catalogservice.Business{
		ID:          1,
		Name:        "Тестовый салон",
		AutoConfirm: false,
	}
}

func testServices() []*catalogservice.Service {
	return []*catalogservice.Service{
		{ID: 10, BusinessID: 1, Name: "Стрижка", DurationMinutes: 60, Price: 1500, IsActive: true},
	}
}

func newTestUseCase(
	bookingRepo *fakeBookingRepo,
	scheduleRepo *fakeScheduleRepo,
	catalog *fakeCatalogClient,
	notify *fakeNotifyClient,
	now time.Time,
) *UseCase {
	uc := NewUseCase(
		bookingRepo,
		scheduleRepo,
		catalog,
		notify,
		&fakeTxManager{},
		Defaults{GranularityMinutes: 30, LeadTimeMinutes: 0},
		time.UTC,
		nopLogger{},
	)
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func validRequest(t *testing.T) *Request {
	t.Helper()
	return &Request{
		BusinessID: 1,
		ClientID:   42,
		Date:       "2026-09-07", // понедельник
		StartTime:  mustTS(t, "10:00"),
		ServiceIDs: []int64{10},
	}
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{}
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		notify,
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)

	assert.Equal(t, int64(101), resp.BookingID)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.Equal(t, "10:00", resp.StartTime.String())
	assert.Equal(t, "11:00", resp.EndTime.String())
	assert.Equal(t, 1500.0, resp.TotalPrice)
	assert.Equal(t, 1, bookingRepo.createCalls)
	assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingCreated}, notify.events)
}

func TestExecute_AutoConfirm(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	business := testBusiness()
	business.AutoConfirm = true
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: business, services: testServices()},
		notify,
		now,
	)

	resp, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingConfirmed}, notify.events)
}

func TestExecute_SlotConflict(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		existing: []*domain.Booking{
			{
				ID:        55,
				Status:    domain.StatusConfirmed,
				StartTime: mustTS(t, "10:30"),
				EndTime:   mustTS(t, "11:30"),
			},
		},
	}
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		notify,
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// Вставка не выполняется, уведомления не отправляются
	assert.Zero(t, bookingRepo.createCalls)
	assert.Empty(t, notify.events)
}

func TestExecute_TouchingBookingIsNotConflict(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		existing: []*domain.Booking{
			{
				ID:        55,
				Status:    domain.StatusConfirmed,
				StartTime: mustTS(t, "09:00"),
				EndTime:   mustTS(t, "10:00"),
			},
		},
	}

	uc := newTestUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 1, bookingRepo.createCalls)
}

func TestExecute_CancelledBookingDoesNotBlock(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		existing: []*domain.Booking{
			{
				ID:        55,
				Status:    domain.StatusCancelled,
				StartTime: mustTS(t, "10:00"),
				EndTime:   mustTS(t, "11:00"),
			},
		},
	}

	uc := newTestUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)
	assert.Equal(t, 1, bookingRepo.createCalls)
}

func TestExecute_BusinessClosed(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	req := validRequest(t)
	req.Date = "2026-09-08" // вторник - нет в недельном расписании

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusinessClosed)
}

func TestExecute_ClosedOverrideSupersedesWeekly(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{
			weekly: testWeekly(t),
			override: &domain.SpecialDayOverride{
				BusinessID: 1,
				Day:        time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
				IsClosed:   true,
			},
		},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrBusinessClosed)
}

func TestExecute_OffGridStartRejected(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	req := validRequest(t)
	req.StartTime = mustTS(t, "10:15")

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_BreakOverlapRejected(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	req := validRequest(t)
	req.StartTime = mustTS(t, "11:30") // 11:30-12:30 задевает перерыв

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_LeadTimeViolation(t *testing.T) {
	// Сегодня понедельник, 09:50; lead time бизнеса 30 минут
	now := time.Date(2026, 9, 7, 9, 50, 0, 0, time.UTC)
	business := testBusiness()
	business.MinLeadTimeMinutes = 30

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: business, services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestExecute_PastDateRejected(t *testing.T) {
	now := time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_BusinessNotFound(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: nil},
		&fakeNotifyClient{},
		now,
	)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		&fakeNotifyClient{},
		now,
	)

	req := validRequest(t)
	req.ServiceIDs = nil
	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest(t)
	req.Date = "07.09.2026"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_MultipleServicesSumDuration(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	services := []*catalogservice.Service{
		{ID: 10, Name: "Стрижка", DurationMinutes: 60, Price: 1500, IsActive: true},
		{ID: 11, Name: "Укладка", DurationMinutes: 30, Price: 800, IsActive: true},
	}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: services},
		&fakeNotifyClient{},
		now,
	)

	req := validRequest(t)
	req.ServiceIDs = []int64{10, 11}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "11:30", resp.EndTime.String())
	assert.Equal(t, 2300.0, resp.TotalPrice)
	assert.Len(t, resp.Services, 2)
}

// Менеджер транзакций, у которого коммит прерывается конфликтом сериализации:
// так выглядит проигранная гонка двух одновременных коммитов на одну дату
type abortingTxManager struct{}

func (f *abortingTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return fmt.Errorf("%w: pq: could not serialize access due to read/write dependencies among transactions",
		txmanager.ErrSerialization)
}

func TestExecute_SerializationConflictMapsToSlotNotAvailable(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(
		&fakeBookingRepo{},
		&fakeScheduleRepo{weekly: testWeekly(t)},
		&fakeCatalogClient{business: testBusiness(), services: testServices()},
		notify,
		now,
	)
	uc.txManager = &abortingTxManager{}

	_, err := uc.Execute(context.Background(), validRequest(t))

	// Проигравший гонку получает занятый слот, а не внутреннюю ошибку
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, notify.events)
}
