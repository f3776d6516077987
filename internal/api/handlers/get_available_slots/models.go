package get_available_slots

import (
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	getAvailableSlots "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/usecase/get_available_slots"
)

// SlotDTO HTTP модель доступного слота
type SlotDTO struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	BusinessID      int64     `json:"businessId"`
	Date            string    `json:"date"`
	ServiceIDs      []int64   `json:"serviceIds"`
	DurationMinutes int       `json:"durationMinutes"`
	Slots           []SlotDTO `json:"slots"`
}

// ToUseCaseRequest конвертирует параметры запроса в модель use case
func ToUseCaseRequest(businessID int64, serviceIDs []int64, dateStr string, limit int) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		BusinessID: businessID,
		ServiceIDs: serviceIDs,
		Date:       date,
		Limit:      limit,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotDTO, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotDTO{
			StartTime:       s.StartTime.String(),
			EndTime:         s.EndTime.String(),
			DurationMinutes: s.DurationMinutes,
		})
	}

	return &AvailableSlotsResponse{
		BusinessID:      resp.BusinessID,
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceIDs:      resp.ServiceIDs,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}
