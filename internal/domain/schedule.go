package domain

import (
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// BreakInterval is a pause inside a working day, half-open [Start, End).
// Breaks are stored as entered by the business owner: they need not be
// sorted or non-overlapping.
type BreakInterval struct {
	Start types.TimeString
	End   types.TimeString
}

// IsZeroLength returns true if the break covers no time at all
func (b BreakInterval) IsZeroLength() bool {
	return !b.Start.IsBefore(b.End)
}

// DaySchedule is the effective working window of a business on one day.
// When IsOpen is false the remaining fields are ignored.
type DaySchedule struct {
	ID         int64
	BusinessID int64
	Weekday    time.Weekday
	IsOpen     bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	Breaks     []BreakInterval
}

// WeeklySchedule maps each weekday of a business to its recurring schedule.
// A missing weekday is treated as closed.
type WeeklySchedule struct {
	BusinessID int64
	Days       map[time.Weekday]DaySchedule
}

// DayFor returns the recurring schedule for the weekday of the given date.
// A missing entry yields a closed day.
func (w *WeeklySchedule) DayFor(date time.Time) DaySchedule {
	if day, ok := w.Days[date.Weekday()]; ok {
		return day
	}
	return DaySchedule{BusinessID: w.BusinessID, Weekday: date.Weekday(), IsOpen: false}
}

// SpecialDayOverride is a date-specific working-hours record that fully
// supersedes the weekly schedule for its date, including the closed flag.
// Overrides are never merged with the weekly schedule and never expire.
type SpecialDayOverride struct {
	ID         int64
	BusinessID int64
	Day        time.Time
	IsClosed   bool
	OpenTime   types.TimeString
	CloseTime  types.TimeString
	Breaks     []BreakInterval
	Notes      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToDaySchedule converts the override into the effective day window
func (o *SpecialDayOverride) ToDaySchedule() DaySchedule {
	if o.IsClosed {
		return DaySchedule{BusinessID: o.BusinessID, Weekday: o.Day.Weekday(), IsOpen: false}
	}
	return DaySchedule{
		BusinessID: o.BusinessID,
		Weekday:    o.Day.Weekday(),
		IsOpen:     true,
		OpenTime:   o.OpenTime,
		CloseTime:  o.CloseTime,
		Breaks:     o.Breaks,
	}
}
