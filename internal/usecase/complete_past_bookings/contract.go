package complete_past_bookings

import (
	"context"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CompletePast(ctx context.Context, today time.Time, nowTime types.TimeString) (int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени в референсной таймзоне
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время в референсной таймзоне
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.Location)
}
