package complete_past_bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

type fakeBookingRepo struct {
	count       int64
	err         error
	calls       int
	lastToday   time.Time
	lastNowTime types.TimeString
}

func (f *fakeBookingRepo) CompletePast(_ context.Context, today time.Time, nowTime types.TimeString) (int64, error) {
	f.calls++
	f.lastToday = today
	f.lastNowTime = nowTime
	return f.count, f.err
}

type fixedTimeProvider struct {
	now time.Time
}

func (f *fixedTimeProvider) Now() time.Time {
	return f.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestUseCase(repo *fakeBookingRepo, now time.Time) *UseCase {
	uc := NewUseCase(repo, time.UTC, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: now}
	return uc
}

func TestExecute_Success(t *testing.T) {
	now := time.Date(2026, 9, 7, 14, 35, 12, 0, time.UTC)
	repo := &fakeBookingRepo{count: 3}

	resp, err := newTestUseCase(repo, now).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.CompletedCount)
	assert.Equal(t, 1, repo.calls)
	// Граница прохода: полночь текущего дня и текущее время с точностью до минуты
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), repo.lastToday)
	assert.Equal(t, "14:35", repo.lastNowTime.String())
}

func TestExecute_RepeatedRunFindsNothing(t *testing.T) {
	now := time.Date(2026, 9, 7, 14, 35, 0, 0, time.UTC)
	repo := &fakeBookingRepo{count: 0}

	uc := newTestUseCase(repo, now)

	resp, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.CompletedCount)

	resp, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.CompletedCount)
	assert.Equal(t, 2, repo.calls)
}

func TestExecute_RepositoryError(t *testing.T) {
	now := time.Date(2026, 9, 7, 14, 35, 0, 0, time.UTC)
	repo := &fakeBookingRepo{err: errors.New("connection reset")}

	_, err := newTestUseCase(repo, now).Execute(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_Midnight(t *testing.T) {
	now := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{}

	_, err := newTestUseCase(repo, now).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00:00", repo.lastNowTime.String())
	assert.Equal(t, repo.lastToday, now)
}
