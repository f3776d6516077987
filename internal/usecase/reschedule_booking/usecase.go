package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	bookingRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/booking"
	scheduleRepoPkg "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	catalogClient "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/notifyservice"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/scheduling"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/ptr"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/txmanager"
)

// Defaults дефолтные параметры, применяемые когда профиль бизнеса
// не задаёт собственные значения
type Defaults struct {
	GranularityMinutes int
	LeadTimeMinutes    int
}

// UseCase use case для переноса бронирования на другой слот.
// Перенос атомарный: проверка нового слота и обновление выполняются в одной
// сериализуемой транзакции. При конфликте исходное бронирование остаётся
// нетронутым - запись обновляется только после успешной проверки.
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	catalogClient CatalogServiceClient
	notifyClient  NotifyServiceClient
	txManager     TransactionManager
	defaults      Defaults
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	notifyClient NotifyServiceClient,
	txManager TransactionManager,
	defaults Defaults,
	location *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		notifyClient:  notifyClient,
		txManager:     txManager,
		defaults:      defaults,
		timeProvider:  &RealTimeProvider{Location: location},
		logger:        logger,
	}
}

// Execute выполняет use case переноса бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, user=%d, date=%s, start=%s",
		req.BookingID, req.UserID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	newDate, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в референсной таймзоне
	now := uc.timeProvider.Now()

	// 3. Существующее бронирование
	booking, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepoPkg.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !booking.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: booking id=%d is in status %s", booking.ID, booking.Status)
		return nil, ErrNotReschedulable
	}

	// 4. Профиль бизнеса и проверка прав: клиент или менеджер бизнеса
	business, err := uc.catalogClient.GetBusiness(ctx, booking.BusinessID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get business id=%d: %v", booking.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	if !uc.hasAccess(req.UserID, booking, business) {
		uc.logger.Warn("RescheduleBooking: user=%d has no access to booking id=%d", req.UserID, booking.ID)
		return nil, ErrAccessDenied
	}

	// 5. Состав услуг: новый из каталога или существующие строки без изменений
	lines := booking.Services
	if len(req.ServiceIDs) > 0 {
		services, err := uc.catalogClient.GetActiveServices(ctx, booking.BusinessID, req.ServiceIDs)
		if err != nil {
			switch {
			case errors.Is(err, catalogClient.ErrServiceNotFound),
				errors.Is(err, catalogClient.ErrServiceInactive):
				uc.logger.Warn("RescheduleBooking: service check failed: %v", err)
				return nil, ErrServiceNotFound
			default:
				uc.logger.Error("RescheduleBooking: failed to get services: %v", err)
				return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
			}
		}
		lines = make([]domain.BookingService, 0, len(services))
		for _, s := range services {
			lines = append(lines, domain.BookingService{
				ServiceID:       s.ID,
				ServiceName:     s.Name,
				ServicePrice:    s.Price,
				DurationMinutes: s.DurationMinutes,
			})
		}
	}

	totalDuration := 0
	for _, l := range lines {
		totalDuration += l.DurationMinutes
	}
	if totalDuration <= 0 {
		uc.logger.Warn("RescheduleBooking: total duration is not positive for booking id=%d", booking.ID)
		return nil, fmt.Errorf("%w: total service duration must be positive", ErrInvalidInput)
	}

	newEndTime, err := req.StartTime.AddMinutes(totalDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: booking would run past midnight", ErrInvalidTimeSlot)
	}

	granularity, leadTime := uc.resolveParams(business)

	candidate := &domain.Booking{
		ID:          booking.ID,
		BusinessID:  booking.BusinessID,
		ClientID:    booking.ClientID,
		BookingDate: newDate,
		StartTime:   req.StartTime,
		EndTime:     newEndTime,
		Status:      booking.Status,
		Services:    lines,
	}

	// 6. Атомарный перенос: проверка нового слота под блокировкой и обновление.
	// Собственный интервал бронирования исключается из проверки пересечений.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.checkSlot(txCtx, candidate, granularity, leadTime, now); err != nil {
			return err
		}

		if err := uc.bookingRepo.UpdateSlot(
			txCtx, candidate.ID, candidate.BookingDate,
			candidate.StartTime, candidate.EndTime, candidate.Services,
		); err != nil {
			return fmt.Errorf("failed to update booking slot: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBusinessClosed),
			errors.Is(err, ErrInvalidTimeSlot),
			errors.Is(err, ErrTooLateToBook),
			errors.Is(err, ErrSlotNotAvailable):
			uc.logger.Warn("RescheduleBooking: new slot rejected for booking id=%d: %v", booking.ID, err)
			return nil, err
		case errors.Is(err, bookingRepoPkg.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, txmanager.ErrSerialization):
			// Конкурентный коммит выиграл целевой слот - исходная запись не тронута
			uc.logger.Warn("RescheduleBooking: serialization conflict for booking id=%d: %v", booking.ID, err)
			return nil, ErrSlotNotAvailable
		default:
			uc.logger.Error("RescheduleBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s %s-%s",
		candidate.ID, req.Date, candidate.StartTime, candidate.EndTime)

	// 7. Уведомление после успешного коммита
	uc.notifyClient.DispatchAsync(notifyservice.EventBookingRescheduled,
		candidate.ID, candidate.BusinessID, candidate.ClientID)

	return &Response{
		BookingID:  candidate.ID,
		BusinessID: candidate.BusinessID,
		ClientID:   candidate.ClientID,
		Status:     string(candidate.Status),
		Date:       candidate.BookingDate.Format(domain.DateFormat),
		StartTime:  candidate.StartTime,
		EndTime:    candidate.EndTime,
		TotalPrice: candidate.TotalPrice(),
	}, nil
}

// hasAccess проверяет, что пользователь - клиент бронирования или менеджер бизнеса
func (uc *UseCase) hasAccess(userID int64, booking *domain.Booking, business *catalogClient.Business) bool {
	if booking.ClientID == userID {
		return true
	}
	for _, managerID := range business.ManagerIDs {
		if managerID == userID {
			return true
		}
	}
	return false
}

// checkSlot проверяет новый слот внутри транзакции: рабочее окно, сетка,
// lead time и пересечения с активными бронированиями кроме собственного
func (uc *UseCase) checkSlot(
	ctx context.Context,
	candidate *domain.Booking,
	granularity, leadTime int,
	now time.Time,
) error {
	window, err := uc.resolveWindow(ctx, candidate.BusinessID, candidate.BookingDate)
	if err != nil {
		return err
	}
	if !window.IsOpen {
		return ErrBusinessClosed
	}

	if scheduling.IsDateInPast(candidate.BookingDate, now) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidTimeSlot)
	}

	if candidate.StartTime.IsBefore(window.OpenTime) {
		return fmt.Errorf("%w: starts before opening time", ErrInvalidTimeSlot)
	}
	if window.CloseTime.IsBefore(candidate.EndTime) {
		return fmt.Errorf("%w: ends after closing time", ErrInvalidTimeSlot)
	}

	openMinutes, err := window.OpenTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: schedule open time is corrupt: %v", ErrInternal, err)
	}
	startMinutes, err := candidate.StartTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: start_time - %v", ErrInvalidInput, err)
	}
	if (startMinutes-openMinutes)%granularity != 0 {
		return fmt.Errorf("%w: start does not fall on the slot grid", ErrInvalidTimeSlot)
	}

	for _, br := range window.Breaks {
		if br.IsZeroLength() {
			continue
		}
		if scheduling.Overlaps(candidate.StartTime, candidate.EndTime, br.Start, br.End) {
			return fmt.Errorf("%w: overlaps with a break", ErrInvalidTimeSlot)
		}
	}

	if scheduling.IsSameDay(candidate.BookingDate, now) {
		if startMinutes < now.Hour()*60+now.Minute()+leadTime {
			return ErrTooLateToBook
		}
	}

	filter := domain.BusinessBookingsFilter{
		BusinessID:      candidate.BusinessID,
		StartDate:       ptr.Ptr(candidate.BookingDate),
		EndDate:         ptr.Ptr(candidate.BookingDate),
		IncludeInactive: false,
	}
	existing, err := uc.bookingRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to get existing bookings: %w", err)
	}

	for _, b := range existing {
		if b.ID == candidate.ID {
			continue
		}
		if !b.IsOccupying() {
			continue
		}
		if scheduling.Overlaps(candidate.StartTime, candidate.EndTime, b.StartTime, b.EndTime) {
			return fmt.Errorf("%w: overlaps with booking id=%d", ErrSlotNotAvailable, b.ID)
		}
	}

	return nil
}

// resolveWindow вычисляет эффективное рабочее окно бизнеса на дату
func (uc *UseCase) resolveWindow(ctx context.Context, businessID int64, date time.Time) (domain.DaySchedule, error) {
	override, err := uc.scheduleRepo.GetSpecialDay(ctx, businessID, date)
	if err != nil && !errors.Is(err, scheduleRepoPkg.ErrSpecialDayNotFound) {
		return domain.DaySchedule{}, fmt.Errorf("failed to get special day: %w", err)
	}
	if errors.Is(err, scheduleRepoPkg.ErrSpecialDayNotFound) {
		override = nil
	}

	weekly, err := uc.scheduleRepo.GetWeeklySchedule(ctx, businessID)
	if err != nil {
		if errors.Is(err, scheduleRepoPkg.ErrScheduleNotFound) {
			return scheduling.EffectiveWindow(domain.DaySchedule{IsOpen: false}, override), nil
		}
		return domain.DaySchedule{}, fmt.Errorf("failed to get weekly schedule: %w", err)
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
