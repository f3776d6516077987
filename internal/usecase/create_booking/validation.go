package create_booking

import (
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
)

// validateRequest проверяет корректность входных данных запроса
func validateRequest(req *Request) (time.Time, error) {
	if req.BusinessID <= 0 {
		return time.Time{}, fmt.Errorf("%w: business_id must be positive", ErrInvalidInput)
	}
	if req.ClientID <= 0 {
		return time.Time{}, fmt.Errorf("%w: client_id must be positive", ErrInvalidInput)
	}
	if len(req.ServiceIDs) == 0 {
		return time.Time{}, fmt.Errorf("%w: service_ids must not be empty", ErrInvalidInput)
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
