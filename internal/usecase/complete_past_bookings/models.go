package complete_past_bookings

// Response результат прохода по завершившимся бронированиям
type Response struct {
	CompletedCount int64 `json:"completed_count"`
}
