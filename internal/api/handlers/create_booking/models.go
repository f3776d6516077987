package create_booking

import (
	createBooking "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/create_booking"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID int64   `json:"businessId"`
	ServiceIDs []int64 `json:"serviceIds"`
	Date       string  `json:"date"`      // "2026-09-15"
	StartTime  string  `json:"startTime"` // "10:00"
	Comment    string  `json:"comment,omitempty"`
}

// ServiceLineDTO строка услуги в составе бронирования
type ServiceLineDTO struct {
	ServiceID       int64   `json:"serviceId"`
	Name            string  `json:"name"`
	DurationMinutes int     `json:"durationMinutes"`
	Price           float64 `json:"price"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64            `json:"id"`
	BusinessID int64            `json:"businessId"`
	ClientID   int64            `json:"clientId"`
	Status     string           `json:"status"`
	Date       string           `json:"date"`
	StartTime  string           `json:"startTime"`
	EndTime    string           `json:"endTime"`
	Services   []ServiceLineDTO `json:"services"`
	TotalPrice float64          `json:"totalPrice"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// ClientID приходит из заголовка аутентификации, не из тела.
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) (*createBooking.Request, error) {
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		BusinessID: r.BusinessID,
		ClientID:   clientID,
		Date:       r.Date,
		StartTime:  startTime,
		ServiceIDs: r.ServiceIDs,
		Comment:    r.Comment,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	services := make([]ServiceLineDTO, 0, len(resp.Services))
	for _, s := range resp.Services {
		services = append(services, ServiceLineDTO{
			ServiceID:       s.ServiceID,
			Name:            s.Name,
			DurationMinutes: s.DurationMinutes,
			Price:           s.Price,
		})
	}

	return &BookingResponse{
		ID:         resp.BookingID,
		BusinessID: resp.BusinessID,
		ClientID:   resp.ClientID,
		Status:     resp.Status,
		Date:       resp.Date,
		StartTime:  resp.StartTime.String(),
		EndTime:    resp.EndTime.String(),
		Services:   services,
		TotalPrice: resp.TotalPrice,
	}
}
