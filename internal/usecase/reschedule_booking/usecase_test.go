package reschedule_booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	bookingRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/booking"
	scheduleRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/txmanager"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

type fakeBookingRepo struct {
	byID            map[int64]*domain.Booking
	existing        []*domain.Booking
	updateSlotCalls int
	lastUpdate      struct {
		id        int64
		date      time.Time
		startTime types.TimeString
		endTime   types.TimeString
		services  []domain.BookingService
	}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	bk, ok := f.byID[id]
	if !ok {
		return nil, bookingRepoPkg.ErrBookingNotFound
	}
	return bk, nil
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return f.existing, nil
}

func (f *fakeBookingRepo) UpdateSlot(
	_ context.Context,
	id int64,
	date time.Time,
	startTime, endTime types.TimeString,
	services []domain.BookingService,
) error {
	f.updateSlotCalls++
	f.lastUpdate.id = id
	f.lastUpdate.date = date
	f.lastUpdate.startTime = startTime
	f.lastUpdate.endTime = endTime
	f.lastUpdate.services = services
	return nil
}

type fakeScheduleRepo struct {
	weekly *domain.WeeklySchedule
}

func (f *fakeScheduleRepo) GetWeeklySchedule(_ context.Context, _ int64) (*domain.WeeklySchedule, error) {
	if f.weekly == nil {
		return nil, scheduleRepoPkg.ErrScheduleNotFound
	}
	return f.weekly, nil
}

func (f *fakeScheduleRepo) GetSpecialDay(_ context.Context, _ int64, _ time.Time) (*domain.SpecialDayOverride, error) {
	return nil, scheduleRepoPkg.ErrSpecialDayNotFound
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

// Понедельник и вторник 09:00-18:00
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
			},
			time.Tuesday: {
				Weekday:   time.Tuesday,
				IsOpen:    true,
				OpenTime:  mustTS(t, "09:00"),
				CloseTime: mustTS(t, "18:00"),
			},
		},
	}
}

// Бронирование клиента 42 на понедельник 10:00-11:00
func testBooking(t *testing.T) *domain.Booking {
	t.Helper()
	return &domain.Booking{
		ID:          7,
		BusinessID:  1,
		ClientID:    42,
		BookingDate: time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime:   mustTS(t, "10:00"),
		EndTime:     mustTS(t, "11:00"),
		Status:      domain.StatusConfirmed,
		Services: []domain.BookingService{
			{ServiceID: 10, ServiceName: "Стрижка", ServicePrice: 1500, DurationMinutes: 60},
		},
	}
}

func newTestUseCase(
	t *testing.T,
	bookingRepo *fakeBookingRepo,
	catalog *fakeCatalogClient,
	notify *fakeNotifyClient,
	now time.Time,
) *UseCase {
	t.Helper()
	uc := NewUseCase(
		bookingRepo,
		&fakeScheduleRepo{weekly: testWeekly(t)},
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
		BookingID: 7,
		UserID:    42,
		Date:      "2026-09-08", // вторник
		StartTime: mustTS(t, "14:00"),
	}
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, notify, now)

	resp, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)

	assert.Equal(t, int64(7), resp.BookingID)
	assert.Equal(t, "2026-09-08", resp.Date)
	assert.Equal(t, "14:00", resp.StartTime.String())
	assert.Equal(t, "15:00", resp.EndTime.String())
	assert.Equal(t, 1, bookingRepo.updateSlotCalls)
	assert.Equal(t, "14:00", bookingRepo.lastUpdate.startTime.String())
	assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingRescheduled}, notify.events)
}

func TestExecute_ConflictLeavesOriginalUntouched(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{
		byID: map[int64]*domain.Booking{7: testBooking(t)},
		existing: []*domain.Booking{
			{
				ID:        99,
				Status:    domain.StatusPending,
				StartTime: mustTS(t, "14:30"),
				EndTime:   mustTS(t, "15:30"),
			},
		},
	}
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, notify, now)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrSlotNotAvailable)

	// Исходное бронирование не обновляется, уведомления не отправляются
	assert.Zero(t, bookingRepo.updateSlotCalls)
	assert.Empty(t, notify.events)
}

func TestExecute_OwnIntervalExcludedFromConflictCheck(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	booking := testBooking(t)

	// Перенос в пределах того же дня: собственный интервал в выборке занятости
	bookingRepo := &fakeBookingRepo{
		byID:     map[int64]*domain.Booking{7: booking},
		existing: []*domain.Booking{booking},
	}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	req := validRequest(t)
	req.Date = "2026-09-07"
	req.StartTime = mustTS(t, "10:30") // пересекается только с самим собой

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, bookingRepo.updateSlotCalls)
}

func TestExecute_NotFound(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_AccessDenied(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	req := validRequest(t)
	req.UserID = 777 // не клиент и не менеджер

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, bookingRepo.updateSlotCalls)
}

func TestExecute_ManagerCanReschedule(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}
	business := &catalogservice.Business{ID: 1, ManagerIDs: []int64{777}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: business}, &fakeNotifyClient{}, now)

	req := validRequest(t)
	req.UserID = 777

	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, bookingRepo.updateSlotCalls)
}

func TestExecute_TerminalStatusRejected(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	booking := testBooking(t)
	booking.Status = domain.StatusCancelled
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: booking}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest(t))
	assert.ErrorIs(t, err, ErrNotReschedulable)
	assert.Zero(t, bookingRepo.updateSlotCalls)
}

func TestExecute_EmptyServiceIDsKeepExistingLines(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	_, err := uc.Execute(context.Background(), validRequest(t))
	require.NoError(t, err)

	// Строки услуг исходного бронирования сохраняются без обращения к каталогу
	require.Len(t, bookingRepo.lastUpdate.services, 1)
	assert.Equal(t, int64(10), bookingRepo.lastUpdate.services[0].ServiceID)
}

func TestExecute_ReplacedServicesChangeDuration(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}
	catalog := &fakeCatalogClient{
		business: &catalogservice.Business{ID: 1},
		services: []*catalogservice.Service{
			{ID: 20, Name: "Массаж", DurationMinutes: 90, Price: 3000, IsActive: true},
		},
	}

	uc := newTestUseCase(t, bookingRepo, catalog, &fakeNotifyClient{}, now)

	req := validRequest(t)
	req.ServiceIDs = []int64{20}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "15:30", resp.EndTime.String())
	assert.Equal(t, 3000.0, resp.TotalPrice)
	require.Len(t, bookingRepo.lastUpdate.services, 1)
	assert.Equal(t, int64(20), bookingRepo.lastUpdate.services[0].ServiceID)
}

func TestExecute_BusinessClosedOnNewDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, &fakeNotifyClient{}, now)

	req := validRequest(t)
	req.Date = "2026-09-09" // среда - нет в недельном расписании

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusinessClosed)
	assert.Zero(t, bookingRepo.updateSlotCalls)
}

// Менеджер транзакций, у которого коммит прерывается конфликтом сериализации
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
	bookingRepo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(t)}}
	notify := &fakeNotifyClient{}

	uc := newTestUseCase(t, bookingRepo, &fakeCatalogClient{business: &catalogservice.Business{ID: 1}}, notify, now)
	uc.txManager = &abortingTxManager{}

	_, err := uc.Execute(context.Background(), validRequest(t))

	// Откат коммита отдаётся клиенту как занятый слот; уведомление не уходит
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, notify.events)
}
