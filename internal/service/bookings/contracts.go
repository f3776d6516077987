package bookings

import (
	"context"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	Cancel(ctx context.Context, id int64, reason string) error
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*catalogservice.Business, error)
}

// NotifyServiceClient интерфейс диспетчера уведомлений
type NotifyServiceClient interface {
	DispatchAsync(eventType notifyservice.EventType, bookingID, businessID, clientID int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
