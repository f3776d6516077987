package domain

import (
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents an appointment of a client at a business.
// EndTime is derived at creation time as StartTime plus the total duration
// of the selected services and changes only through a reschedule.
type Booking struct {
	ID          int64
	BusinessID  int64
	ClientID    int64
	BookingDate time.Time
	StartTime   types.TimeString
	EndTime     types.TimeString
	Status      BookingStatus
	Notes       *string

	// Services selected for this appointment, denormalized for history
	Services []BookingService

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingService is a single service line of a booking with data
// denormalized from the catalog at commit time.
type BookingService struct {
	ServiceID       int64
	ServiceName     string
	ServicePrice    float64
	DurationMinutes int
}

// IsOccupying returns true if the booking holds its time interval.
// Only pending and confirmed bookings participate in overlap checks;
// completed and cancelled bookings are history.
func (b *Booking) IsOccupying() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking can be moved to another slot
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// TotalDurationMinutes returns the summed duration of all service lines
func (b *Booking) TotalDurationMinutes() int {
	total := 0
	for _, s := range b.Services {
		total += s.DurationMinutes
	}
	return total
}

// TotalPrice returns the summed price of all service lines
func (b *Booking) TotalPrice() float64 {
	total := 0.0
	for _, s := range b.Services {
		total += s.ServicePrice
	}
	return total
}

// BusinessBookingsFilter фильтр для получения бронирований бизнеса
type BusinessBookingsFilter struct {
	BusinessID      int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (опционально)
	EndDate         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли завершённые и отменённые бронирования
}
