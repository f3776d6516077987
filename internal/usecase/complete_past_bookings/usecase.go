package complete_past_bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// ErrInternal внутренняя ошибка
var ErrInternal = errors.New("internal error")

// UseCase use case прохода по завершившимся бронированиям.
// Все активные бронирования, чей интервал полностью в прошлом, переводятся
// в completed одним UPDATE - проход идемпотентен и безопасен для
// параллельного запуска: повторный вызов не находит новых строк.
type UseCase struct {
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(bookingRepo BookingRepository, location *time.Location, logger Logger) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		timeProvider: &RealTimeProvider{Location: location},
		logger:       logger,
	}
}

// Execute переводит завершившиеся бронирования в статус completed
func (uc *UseCase) Execute(ctx context.Context) (*Response, error) {
	now := uc.timeProvider.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	nowTime, err := types.NewTimeStringFromMinutes(now.Hour()*60 + now.Minute())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build current time: %v", ErrInternal, err)
	}

	count, err := uc.bookingRepo.CompletePast(ctx, today, nowTime)
	if err != nil {
		uc.logger.Error("CompletePastBookings: sweep failed: %v", err)
		return nil, fmt.Errorf("%w: failed to complete past bookings: %v", ErrInternal, err)
	}

	if count > 0 {
		uc.logger.Info("CompletePastBookings: marked %d bookings as completed", count)
	}

	return &Response{CompletedCount: count}, nil
}
