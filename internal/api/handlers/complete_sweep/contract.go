package complete_sweep

import (
	"context"

	completePastBookings "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/complete_past_bookings"
)

type CompletePastBookingsUseCase interface {
	Execute(ctx context.Context) (*completePastBookings.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}
