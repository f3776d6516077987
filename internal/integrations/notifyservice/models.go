package notifyservice

// EventType тип события бронирования для диспетчера уведомлений
type EventType string

const (
	EventBookingCreated     EventType = "booking_created"
	EventBookingConfirmed   EventType = "booking_confirmed"
	EventBookingRescheduled EventType = "booking_rescheduled"
	EventBookingCancelled   EventType = "booking_cancelled"
	EventBookingCompleted   EventType = "booking_completed"
)

// BookingEvent событие, отправляемое диспетчеру уведомлений после успешного коммита
type BookingEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	BookingID  int64     `json:"booking_id"`
	BusinessID int64     `json:"business_id"`
	ClientID   int64     `json:"client_id"`
}
