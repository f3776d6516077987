package get_weekly_schedule

import (
	"context"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetWeeklySchedule(ctx context.Context, businessID int64) (*models.WeeklyScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
