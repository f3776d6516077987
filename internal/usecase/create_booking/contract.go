package create_booking

import (
	"context"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
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

// NotifyServiceClient интерфейс диспетчера уведомлений
type NotifyServiceClient interface {
	DispatchAsync(eventType notifyservice.EventType, bookingID, businessID, clientID int64)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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

// RealTimeProvider реальный провайдер времени в референсной таймзоне
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время в референсной таймзоне
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.Location)
}
