package reschedule_booking

import (
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
)

// validateRequest проверяет корректность входных данных запроса
func validateRequest(req *Request) (time.Time, error) {
	if req.BookingID <= 0 {
		return time.Time{}, fmt.Errorf("%w: booking_id must be positive", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return time.Time{}, fmt.Errorf("%w: user_id must be positive", ErrInvalidInput)
	}
	if len(req.ServiceIDs) > domain.MaxServicesPerBooking {
		return time.Time{}, fmt.Errorf("%w: too many services in one booking", ErrInvalidInput)
	}
	if err := req.StartTime.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("%w: start_time - %v", ErrInvalidInput, err)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be in YYYY-MM-DD format", ErrInvalidInput)
	}

	return date, nil
}
