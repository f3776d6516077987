package create_booking

import (
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// Request запрос на создание бронирования
type Request struct {
	BusinessID int64            `json:"business_id"`
	ClientID   int64            `json:"client_id"`
	Date       string           `json:"date"`
	StartTime  types.TimeString `json:"start_time"`
	ServiceIDs []int64          `json:"service_ids"`
	Comment    string           `json:"comment,omitempty"`
}

// Response ответ с созданным бронированием
type Response struct {
	BookingID  int64            `json:"booking_id"`
	BusinessID int64            `json:"business_id"`
	ClientID   int64            `json:"client_id"`
	Status     string           `json:"status"`
	Date       string           `json:"date"`
	StartTime  types.TimeString `json:"start_time"`
	EndTime    types.TimeString `json:"end_time"`
	Services   []ServiceLine    `json:"services"`
	TotalPrice float64          `json:"total_price"`
}

// ServiceLine строка услуги в составе бронирования
type ServiceLine struct {
	ServiceID       int64   `json:"service_id"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}
