package domain

// Default scheduling values
const (
	DefaultGranularityMinutes = 30
	DefaultLeadTimeMinutes    = 0
)

// Business validation constants
const (
	MinGranularityMinutes       = 5
	MaxGranularityMinutes       = 240
	MinLeadTimeMinutes          = 0
	MaxLeadTimeMinutes          = 10080 // 1 week
	MaxServicesPerBooking       = 10
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OccupyingStatuses статусы бронирований, удерживающих свой временной интервал.
// Используются при проверке пересечений слотов.
var OccupyingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses статусы бронирований, не участвующих в занятости
var InactiveStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
}
