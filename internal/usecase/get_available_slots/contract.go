package get_available_slots

import (
	"context"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetWeeklySchedule(ctx context.Context, businessID int64) (*domain.WeeklySchedule, error)
	GetSpecialDay(ctx context.Context, businessID int64, day time.Time) (*domain.SpecialDayOverride, error)
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*catalogservice.Business, error)
	GetActiveServices(ctx context.Context, businessID int64, serviceIDs []int64) ([]*catalogservice.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени.
// Возвращает текущий момент в референсной таймзоне сервиса, чтобы
// вычисления "сегодня" не зависели от таймзоны клиента.
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время в референсной таймзоне
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.Location)
}
