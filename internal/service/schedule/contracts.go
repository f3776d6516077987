package schedule

import (
	"context"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetWeeklySchedule(ctx context.Context, businessID int64) (*domain.WeeklySchedule, error)
	ReplaceWeeklySchedule(ctx context.Context, weekly *domain.WeeklySchedule) error
	GetSpecialDay(ctx context.Context, businessID int64, day time.Time) (*domain.SpecialDayOverride, error)
	UpsertSpecialDay(ctx context.Context, override *domain.SpecialDayOverride) (*domain.SpecialDayOverride, error)
	DeleteSpecialDay(ctx context.Context, businessID int64, day time.Time) error
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetBusiness(ctx context.Context, businessID int64) (*catalogservice.Business, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
