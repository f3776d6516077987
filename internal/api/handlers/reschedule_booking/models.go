package reschedule_booking

import (
	rescheduleBooking "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/reschedule_booking"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
	// ServiceIDs опциональная замена состава услуг
	ServiceIDs []int64 `json:"serviceIds,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64   `json:"id"`
	BusinessID int64   `json:"businessId"`
	ClientID   int64   `json:"clientId"`
	Status     string  `json:"status"`
	Date       string  `json:"date"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	TotalPrice float64 `json:"totalPrice"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID, userID int64) (*rescheduleBooking.Request, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		BookingID:  bookingID,
		UserID:     userID,
		Date:       r.Date,
		StartTime:  startTime,
		ServiceIDs: r.ServiceIDs,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:         resp.BookingID,
		BusinessID: resp.BusinessID,
		ClientID:   resp.ClientID,
		Status:     resp.Status,
		Date:       resp.Date,
		StartTime:  resp.StartTime.String(),
		EndTime:    resp.EndTime.String(),
		TotalPrice: resp.TotalPrice,
	}
}
