package update_weekly_schedule

import (
	"context"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule/models"
)

type ScheduleService interface {
	PutWeeklySchedule(ctx context.Context, businessID int64, req *models.WeeklyScheduleRequest) (*models.WeeklyScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
