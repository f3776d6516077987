package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	scheduleRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	catalogClient "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/scheduling"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/ptr"
)

// Defaults дефолтные параметры генерации, применяемые когда профиль бизнеса
// не задаёт собственные значения
type Defaults struct {
	GranularityMinutes int
	LeadTimeMinutes    int
}

// UseCase use case для получения доступных слотов для бронирования.
// Конвейер: резолвер рабочего окна → генератор слотов. Чтение без блокировок:
// это снимок доступности, обязательная перепроверка происходит при коммите.
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	catalogClient CatalogServiceClient
	defaults      Defaults
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	defaults Defaults,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		defaults:      defaults,
		timeProvider:  &RealTimeProvider{Location: location},
		logger:        logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%d, services=%v, date=%s",
		req.BusinessID, req.ServiceIDs, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в референсной таймзоне
	now := uc.timeProvider.Now()

	// 3. Профиль бизнеса: auto-confirm, шаг слотов, lead time
	business, err := uc.catalogClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			uc.logger.Warn("GetAvailableSlots: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	granularity, leadTime := uc.resolveParams(business)

	// 4. Услуги: только активные, суммарная длительность
	services, err := uc.catalogClient.GetActiveServices(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		switch {
		case errors.Is(err, catalogClient.ErrServiceNotFound):
			uc.logger.Warn("GetAvailableSlots: service not found for business id=%d", req.BusinessID)
			return nil, ErrServiceNotFound
		case errors.Is(err, catalogClient.ErrServiceInactive):
			uc.logger.Warn("GetAvailableSlots: inactive service requested for business id=%d", req.BusinessID)
			return nil, ErrServiceInactive
		default:
			uc.logger.Error("GetAvailableSlots: failed to get services: %v", err)
			return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
		}
	}

	totalDuration := 0
	for _, s := range services {
		totalDuration += s.DurationMinutes
	}
	if totalDuration <= 0 {
		uc.logger.Warn("GetAvailableSlots: total duration is not positive for business id=%d", req.BusinessID)
		return nil, fmt.Errorf("%w: total service duration must be positive", ErrInvalidInput)
	}

	// 5. Эффективное рабочее окно: переопределение на дату имеет полный
	// приоритет над недельным расписанием
	window, err := uc.resolveWindow(ctx, req.BusinessID, req.Date)
	if err != nil {
		return nil, err
	}

	if !window.IsOpen {
		uc.logger.Info("GetAvailableSlots: business=%d is closed on %s",
			req.BusinessID, req.Date.Format(domain.DateFormat))
		return uc.emptyResponse(req, totalDuration), nil
	}

	// 6. Занятые интервалы: активные бронирования на эту дату
	filter := domain.BusinessBookingsFilter{
		BusinessID:      req.BusinessID,
		StartDate:       ptr.Ptr(req.Date),
		EndDate:         ptr.Ptr(req.Date),
		IncludeInactive: false,
	}
	bookings, err := uc.bookingRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 7. Генерация слотов
	slots, err := scheduling.GenerateSlots(
		window,
		req.Date,
		granularity,
		totalDuration,
		scheduling.OccupiedFromBookings(bookings),
		now,
		leadTime,
	)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 8. Ограничение размера ответа - только отображение, не корректность
	if req.Limit > 0 && len(slots) > req.Limit {
		slots = slots[:req.Limit]
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots for business=%d, date=%s",
		len(slots), req.BusinessID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:            req.Date,
		BusinessID:      req.BusinessID,
		ServiceIDs:      req.ServiceIDs,
		DurationMinutes: totalDuration,
		Slots:           slots,
	}, nil
}

// resolveWindow вычисляет эффективное рабочее окно бизнеса на дату
func (uc *UseCase) resolveWindow(ctx context.Context, businessID int64, date time.Time) (domain.DaySchedule, error) {
	override, err := uc.scheduleRepo.GetSpecialDay(ctx, businessID, date)
	if err != nil && !errors.Is(err, scheduleRepoPkg.ErrSpecialDayNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get special day: %v", err)
		return domain.DaySchedule{}, fmt.Errorf("%w: failed to get special day: %v", ErrInternal, err)
	}
	if errors.Is(err, scheduleRepoPkg.ErrSpecialDayNotFound) {
		override = nil
	}

	weekly, err := uc.scheduleRepo.GetWeeklySchedule(ctx, businessID)
	if err != nil {
		if errors.Is(err, scheduleRepoPkg.ErrScheduleNotFound) {
			// Бизнес без расписания считается закрытым
			uc.logger.Info("GetAvailableSlots: business=%d has no weekly schedule", businessID)
			return scheduling.EffectiveWindow(domain.DaySchedule{IsOpen: false}, override), nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get weekly schedule: %v", err)
		return domain.DaySchedule{}, fmt.Errorf("%w: failed to get weekly schedule: %v", ErrInternal, err)
	}

	return scheduling.EffectiveWindow(weekly.DayFor(date), override), nil
}

// resolveParams выбирает шаг слотов и lead time: профиль бизнеса, иначе дефолты сервиса
func (uc *UseCase) resolveParams(business *catalogClient.Business) (granularity, leadTime int) {
	granularity = uc.defaults.GranularityMinutes
	if business.SlotGranularityMinutes > 0 {
		granularity = business.SlotGranularityMinutes
	}

	leadTime = uc.defaults.LeadTimeMinutes
	if business.MinLeadTimeMinutes > 0 {
		leadTime = business.MinLeadTimeMinutes
	}

	return granularity, leadTime
}

func (uc *UseCase) emptyResponse(req *Request, totalDuration int) *Response {
	return &Response{
		Date:            req.Date,
		BusinessID:      req.BusinessID,
		ServiceIDs:      req.ServiceIDs,
		DurationMinutes: totalDuration,
		Slots:           []domain.AvailableSlot{},
	}
}
