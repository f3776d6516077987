package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	bookingRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/booking"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/bookings/models"
)

type fakeBookingRepo struct {
	byID              map[int64]*domain.Booking
	cancelErr         error
	cancelCalls       int
	updateStatusCalls int
	lastStatus        domain.BookingStatus
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	bk, ok := f.byID[id]
	if !ok {
		return nil, bookingRepoPkg.ErrBookingNotFound
	}
	return bk, nil
}

func (f *fakeBookingRepo) GetByClientID(_ context.Context, _ int64, _ *domain.BookingStatus) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) GetByBusinessWithFilter(_ context.Context, _ domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, _ int64, status domain.BookingStatus) error {
	f.updateStatusCalls++
	f.lastStatus = status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, _ int64, _ string) error {
	f.cancelCalls++
	return f.cancelErr
}

type fakeCatalogClient struct {
	business *catalogservice.Business
}

func (f *fakeCatalogClient) GetBusiness(_ context.Context, _ int64) (*catalogservice.Business, error) {
	if f.business == nil {
		return nil, catalogservice.ErrBusinessNotFound
	}
	return f.business, nil
}

type fakeNotifyClient struct {
	events []notifyservice.EventType
}

func (f *fakeNotifyClient) DispatchAsync(eventType notifyservice.EventType, _, _, _ int64) {
	f.events = append(f.events, eventType)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:         7,
		BusinessID: 1,
		ClientID:   42,
		Status:     status,
	}
}

func newTestService(repo *fakeBookingRepo, notify *fakeNotifyClient) *Service {
	catalog := &fakeCatalogClient{
		business: &catalogservice.Business{ID: 1, ManagerIDs: []int64{777}},
	}
	return NewService(repo, catalog, notify, nopLogger{})
}

func TestCancel_Success(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusPending)}}
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.Cancel(context.Background(), 7, &models.CancelBookingRequest{UserID: 42, CancellationReason: "не смогу прийти"})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.cancelCalls)
	assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingCancelled}, notify.events)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusCompleted)}}
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.Cancel(context.Background(), 7, &models.CancelBookingRequest{UserID: 42})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Zero(t, repo.cancelCalls)
	assert.Empty(t, notify.events)
}

func TestCancel_ConcurrentTerminalStatus(t *testing.T) {
	// Между чтением статуса и UPDATE бронирование успело завершиться:
	// статусный предикат в запросе не находит строку
	repo := &fakeBookingRepo{
		byID:      map[int64]*domain.Booking{7: testBooking(domain.StatusPending)},
		cancelErr: bookingRepoPkg.ErrCannotCancel,
	}
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.Cancel(context.Background(), 7, &models.CancelBookingRequest{UserID: 42})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Empty(t, notify.events)
}

func TestCancel_AccessDenied(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusPending)}}
	svc := newTestService(repo, &fakeNotifyClient{})

	err := svc.Cancel(context.Background(), 7, &models.CancelBookingRequest{UserID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Zero(t, repo.cancelCalls)
}

func TestUpdateStatus_ManagerConfirms(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusPending)}}
	notify := &fakeNotifyClient{}
	svc := newTestService(repo, notify)

	err := svc.UpdateStatus(context.Background(), 7, &models.UpdateStatusRequest{UserID: 777, Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, repo.lastStatus)
	assert.Equal(t, []notifyservice.EventType{notifyservice.EventBookingConfirmed}, notify.events)
}

func TestUpdateStatus_UnknownStatusValue(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusPending)}}
	svc := newTestService(repo, &fakeNotifyClient{})

	err := svc.UpdateStatus(context.Background(), 7, &models.UpdateStatusRequest{UserID: 777, Status: "approved"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, repo.updateStatusCalls)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	repo := &fakeBookingRepo{byID: map[int64]*domain.Booking{7: testBooking(domain.StatusCompleted)}}
	svc := newTestService(repo, &fakeNotifyClient{})

	err := svc.UpdateStatus(context.Background(), 7, &models.UpdateStatusRequest{UserID: 777, Status: "confirmed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, repo.updateStatusCalls)
}
