package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromString("")
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestNewTimeStringFromMinutes(t *testing.T) {
	ts, err := NewTimeStringFromMinutes(0)
	require.NoError(t, err)
	assert.Equal(t, "00:00", ts.String())

	ts, err = NewTimeStringFromMinutes(9*60 + 5)
	require.NoError(t, err)
	assert.Equal(t, "09:05", ts.String())

	_, err = NewTimeStringFromMinutes(24 * 60)
	assert.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = NewTimeStringFromMinutes(-1)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Minutes(t *testing.T) {
	ts := TimeString("14:45")
	minutes, err := ts.Minutes()
	require.NoError(t, err)
	assert.Equal(t, 14*60+45, minutes)

	_, err = TimeString("garbage").Minutes()
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts := TimeString("10:00")

	result, err := ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, "11:30", result.String())

	// Ровно до полуночи допустимо как конец интервала
	result, err = TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, "24:00", result.String())

	// За полночь - ошибка
	_, err = TimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Comparison(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore(TimeString("10:00")))
	assert.False(t, TimeString("10:00").IsBefore(TimeString("10:00")))
	assert.True(t, TimeString("18:00").IsAfter(TimeString("09:00")))

	// "24:00" лексикографически позже любого валидного времени
	assert.True(t, TimeString("23:59").IsBefore(TimeString("24:00")))
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan(time.Date(2026, 9, 1, 11, 15, 0, 0, time.UTC)))
	assert.Equal(t, "11:15", ts.String())

	// Postgres TIME приходит как "HH:MM:SS"
	require.NoError(t, ts.Scan([]byte("08:30:00")))
	assert.Equal(t, "08:30", ts.String())

	require.NoError(t, ts.Scan("16:45"))
	assert.Equal(t, "16:45", ts.String())

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("12:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "12:00:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("garbage").Value()
	assert.Error(t, err)
}

func TestTimeString_EndOfDayRoundTrip(t *testing.T) {
	// "24:00" рождается в AddMinutes при окне до конца суток
	// и должен переживать запись в БД и чтение обратно
	end, err := TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	require.Equal(t, "24:00", end.String())

	v, err := end.Value()
	require.NoError(t, err)
	assert.Equal(t, "24:00:00", v)

	var scanned TimeString
	require.NoError(t, scanned.Scan("24:00:00"))
	assert.Equal(t, end, scanned)
}
