package reschedule_booking

import (
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// Request запрос на перенос бронирования
type Request struct {
	BookingID int64            `json:"-"`
	UserID    int64            `json:"-"`
	Date      string           `json:"date"`
	StartTime types.TimeString `json:"start_time"`
	// ServiceIDs опциональная замена состава услуг; пустой список
	// сохраняет текущие строки услуг без обращения к каталогу
	ServiceIDs []int64 `json:"service_ids,omitempty"`
}

// Response ответ с обновлённым бронированием
type Response struct {
	BookingID  int64            `json:"booking_id"`
	BusinessID int64            `json:"business_id"`
	ClientID   int64            `json:"client_id"`
	Status     string           `json:"status"`
	Date       string           `json:"date"`
	StartTime  types.TimeString `json:"start_time"`
	EndTime    types.TimeString `json:"end_time"`
	TotalPrice float64          `json:"total_price"`
}
