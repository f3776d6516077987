package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

func ts(t *testing.T, s string) types.TimeString {
	t.Helper()
	v, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return v
}

// Понедельник 09:00-18:00, перерыв 12:00-13:00 - базовый рабочий день
func mondayWindow(t *testing.T) domain.DaySchedule {
	t.Helper()
	return domain.DaySchedule{
		Weekday:   time.Monday,
		IsOpen:    true,
		OpenTime:  ts(t, "09:00"),
		CloseTime: ts(t, "18:00"),
		Breaks: []domain.BreakInterval{
			{Start: ts(t, "12:00"), End: ts(t, "13:00")},
		},
	}
}

func slotStarts(slots []domain.AvailableSlot) []string {
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime.String())
	}
	return starts
}

func TestGenerateSlots_BasicDayWithBreak(t *testing.T) {
	// Будущий понедельник, длительность 60, шаг 30
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, 0)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	starts := slotStarts(slots)

	assert.Equal(t, "09:00", starts[0])
	assert.Equal(t, "17:00", starts[len(starts)-1])

	// 11:00 заканчивается ровно в начале перерыва - граничащие интервалы не пересекаются
	assert.Contains(t, starts, "11:00")
	// 11:30 захватил бы перерыв
	assert.NotContains(t, starts, "11:30")
	// 12:00 и 12:30 начинаются внутри перерыва
	assert.NotContains(t, starts, "12:00")
	assert.NotContains(t, starts, "12:30")
	// 13:00 начинается ровно в конце перерыва
	assert.Contains(t, starts, "13:00")
	// 17:30 закончился бы после закрытия
	assert.NotContains(t, starts, "17:30")
}

func TestGenerateSlots_OccupiedInterval(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	occupied := []Interval{
		{Start: ts(t, "10:00"), End: ts(t, "11:00")},
	}

	// Длительность 45: 09:00-09:45 свободен, 09:30-10:15 задевает занятый интервал
	slots, err := GenerateSlots(mondayWindow(t), date, 30, 45, occupied, now, 0)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Contains(t, starts, "09:00")
	assert.NotContains(t, starts, "09:30")
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "10:30")
	// 11:00-11:45 начинается ровно в конце занятого интервала
	assert.Contains(t, starts, "11:00")
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	window := domain.DaySchedule{IsOpen: false}

	slots, err := GenerateSlots(window, date, 30, 60, nil, now, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_PastDate(t *testing.T) {
	date := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	slots, err := GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_LeadTimeSameDay(t *testing.T) {
	// Сегодня понедельник, сейчас 10:10, lead time 30 минут:
	// минимальное начало - 10:40, первый слот сетки - 11:00
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 7, 10, 10, 0, 0, time.UTC)

	slots, err := GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, 30)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	starts := slotStarts(slots)
	assert.Equal(t, "11:00", starts[0])
	assert.NotContains(t, starts, "10:30")
}

func TestGenerateSlots_LeadTimeNotAppliedToFutureDates(t *testing.T) {
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 7, 17, 50, 0, 0, time.UTC)

	slots, err := GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, 120)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	assert.Equal(t, "09:00", slots[0].StartTime.String())
}

func TestGenerateSlots_DurationLongerThanWindow(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	window := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  ts(t, "09:00"),
		CloseTime: ts(t, "10:00"),
	}

	slots, err := GenerateSlots(window, date, 30, 90, nil, now, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_OpenEqualsClose(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	window := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  ts(t, "09:00"),
		CloseTime: ts(t, "09:00"),
	}

	slots, err := GenerateSlots(window, date, 30, 30, nil, now, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlots_ZeroLengthBreakIgnored(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	window := mondayWindow(t)
	window.Breaks = []domain.BreakInterval{
		{Start: ts(t, "12:00"), End: ts(t, "12:00")},
	}

	slots, err := GenerateSlots(window, date, 30, 60, nil, now, 0)
	require.NoError(t, err)

	// Перерыв нулевой длины не блокирует ничего
	assert.Contains(t, slotStarts(slots), "11:30")
	assert.Contains(t, slotStarts(slots), "12:00")
}

func TestGenerateSlots_MidnightClose(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	window := domain.DaySchedule{
		IsOpen:    true,
		OpenTime:  ts(t, "22:00"),
		CloseTime: types.TimeString("24:00"),
	}

	slots, err := GenerateSlots(window, date, 60, 60, nil, now, 0)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Equal(t, []string{"22:00", "23:00"}, starts)
	assert.Equal(t, "24:00", slots[len(slots)-1].EndTime.String())
}

func TestGenerateSlots_InvalidParams(t *testing.T) {
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	_, err := GenerateSlots(mondayWindow(t), date, 30, 0, nil, now, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = GenerateSlots(mondayWindow(t), date, 0, 60, nil, now, 0)
	assert.ErrorIs(t, err, ErrInvalidGranularity)

	_, err = GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, -1)
	assert.ErrorIs(t, err, ErrInvalidLeadTime)
}

func TestEffectiveWindow_OverrideFullySupersedes(t *testing.T) {
	weekly := mondayWindow(t)

	// Переопределение закрывает день целиком
	closed := &domain.SpecialDayOverride{IsClosed: true}
	window := EffectiveWindow(weekly, closed)
	assert.False(t, window.IsOpen)

	// Переопределение с другими часами: недельные перерывы не наследуются
	shortDay := &domain.SpecialDayOverride{
		IsClosed:  false,
		OpenTime:  ts(t, "10:00"),
		CloseTime: ts(t, "14:00"),
	}
	window = EffectiveWindow(weekly, shortDay)
	assert.True(t, window.IsOpen)
	assert.Equal(t, "10:00", window.OpenTime.String())
	assert.Equal(t, "14:00", window.CloseTime.String())
	assert.Empty(t, window.Breaks)

	// Без переопределения действует недельное расписание
	window = EffectiveWindow(weekly, nil)
	assert.Equal(t, "09:00", window.OpenTime.String())
	assert.Len(t, window.Breaks, 1)
}

func TestOverlaps_HalfOpenBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		expected bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"contained", "10:00", "12:00", "10:30", "11:00", true},
		{"touching end to start", "10:00", "11:00", "11:00", "12:00", false},
		{"touching start to end", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "09:00", "10:00", "11:00", "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(ts(t, tt.aStart), ts(t, tt.aEnd), ts(t, tt.bStart), ts(t, tt.bEnd))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOccupiedFromBookings_SkipsInactive(t *testing.T) {
	bookings := []*domain.Booking{
		{Status: domain.StatusPending, StartTime: ts(t, "09:00"), EndTime: ts(t, "10:00")},
		{Status: domain.StatusConfirmed, StartTime: ts(t, "10:00"), EndTime: ts(t, "11:00")},
		{Status: domain.StatusCancelled, StartTime: ts(t, "11:00"), EndTime: ts(t, "12:00")},
		{Status: domain.StatusCompleted, StartTime: ts(t, "12:00"), EndTime: ts(t, "13:00")},
	}

	occupied := OccupiedFromBookings(bookings)
	require.Len(t, occupied, 2)
	assert.Equal(t, "09:00", occupied[0].Start.String())
	assert.Equal(t, "10:00", occupied[1].Start.String())
}

func TestWeeklySchedule_DayForMissingWeekday(t *testing.T) {
	weekly := &domain.WeeklySchedule{
		BusinessID: 1,
		Days: map[time.Weekday]domain.DaySchedule{
			time.Monday: mondayWindow(t),
		},
	}

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	tuesday := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)

	assert.True(t, weekly.DayFor(monday).IsOpen)
	assert.False(t, weekly.DayFor(tuesday).IsOpen)
}

func TestIsDateInPast_CivilDateComparison(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Дата запроса приходит полуночью UTC, "сейчас" - в референсной
	// таймзоне; сравниваются календарные дни, а не инстанты
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	nowNY := time.Date(2026, 9, 1, 8, 0, 0, 0, ny)

	assert.True(t, IsSameDay(date, nowNY))
	assert.False(t, IsDateInPast(date, nowNY))

	assert.True(t, IsDateInPast(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), nowNY))
	assert.False(t, IsDateInPast(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), nowNY))

	// Восточнее UTC: в референсной таймзоне уже наступил следующий день
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	nowTokyo := time.Date(2026, 9, 2, 1, 0, 0, 0, tokyo)
	assert.True(t, IsDateInPast(date, nowTokyo))
}

func TestGenerateSlots_TodayInWesternTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 7, 8, 0, 0, 0, ny)

	slots, err := GenerateSlots(mondayWindow(t), date, 30, 60, nil, now, 0)
	require.NoError(t, err)

	// Сегодняшний день не считается прошедшим, слоты доступны с открытия
	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00", slotStarts(slots)[0])
}
