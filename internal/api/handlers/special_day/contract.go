package special_day

import (
	"context"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetSpecialDay(ctx context.Context, businessID int64, day time.Time) (*models.SpecialDayResponse, error)
	PutSpecialDay(ctx context.Context, businessID int64, day time.Time, req *models.SpecialDayRequest) (*models.SpecialDayResponse, error)
	DeleteSpecialDay(ctx context.Context, businessID int64, day time.Time, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
