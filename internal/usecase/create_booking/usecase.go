package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
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
	AutoConfirm        bool
}

// UseCase use case для создания бронирования.
// Коммит атомарный: перепроверка занятости и вставка выполняются в одной
// сериализуемой транзакции, поэтому два конкурирующих запроса на один слот
// не могут пройти оба - проигравший получает ErrSlotNotAvailable.
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

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: business=%d, client=%d, date=%s, start=%s",
		req.BusinessID, req.ClientID, req.Date, req.StartTime)

	// 1. Валидация входных данных
	date, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в референсной таймзоне
	now := uc.timeProvider.Now()

	// 3. Профиль бизнеса: auto-confirm, шаг слотов, lead time
	business, err := uc.catalogClient.GetBusiness(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			uc.logger.Warn("CreateBooking: business id=%d not found", req.BusinessID)
			return nil, ErrBusinessNotFound
		}
		uc.logger.Error("CreateBooking: failed to get business id=%d: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}

	// 4. Услуги: только активные, с денормализацией имени и цены
	services, err := uc.catalogClient.GetActiveServices(ctx, req.BusinessID, req.ServiceIDs)
	if err != nil {
		switch {
		case errors.Is(err, catalogClient.ErrServiceNotFound),
			errors.Is(err, catalogClient.ErrServiceInactive):
			uc.logger.Warn("CreateBooking: service check failed for business id=%d: %v", req.BusinessID, err)
			return nil, ErrServiceNotFound
		default:
			uc.logger.Error("CreateBooking: failed to get services: %v", err)
			return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
		}
	}

	totalDuration := 0
	lines := make([]domain.BookingService, 0, len(services))
	for _, s := range services {
		totalDuration += s.DurationMinutes
		lines = append(lines, domain.BookingService{
			ServiceID:       s.ID,
			ServiceName:     s.Name,
			ServicePrice:    s.Price,
			DurationMinutes: s.DurationMinutes,
		})
	}
	if totalDuration <= 0 {
		uc.logger.Warn("CreateBooking: total duration is not positive for business id=%d", req.BusinessID)
		return nil, fmt.Errorf("%w: total service duration must be positive", ErrInvalidInput)
	}

	endTime, err := req.StartTime.AddMinutes(totalDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: booking would run past midnight", ErrInvalidTimeSlot)
	}

	granularity, leadTime := uc.resolveParams(business)

	status := domain.StatusPending
	if business.AutoConfirm {
		status = domain.StatusConfirmed
	}

	booking := &domain.Booking{
		BusinessID:  req.BusinessID,
		ClientID:    req.ClientID,
		BookingDate: date,
		StartTime:   req.StartTime,
		EndTime:     endTime,
		Status:      status,
		Services:    lines,
	}
	if req.Comment != "" {
		comment := req.Comment
		booking.Notes = &comment
	}

	// 5. Атомарный коммит: проверка расписания, перечитывание занятости
	// под блокировкой и вставка - всё в одной сериализуемой транзакции
	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.checkSlot(txCtx, booking, granularity, leadTime, now, 0); err != nil {
			return err
		}

		var txErr error
		created, txErr = uc.bookingRepo.Create(txCtx, booking)
		if txErr != nil {
			return fmt.Errorf("failed to create booking: %w", txErr)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBusinessClosed),
			errors.Is(err, ErrInvalidTimeSlot),
			errors.Is(err, ErrTooLateToBook),
			errors.Is(err, ErrSlotNotAvailable):
			uc.logger.Warn("CreateBooking: slot rejected for business=%d: %v", req.BusinessID, err)
			return nil, err
		case errors.Is(err, txmanager.ErrSerialization):
			// Конкурентный коммит выиграл этот слот - для клиента это занятый слот
			uc.logger.Warn("CreateBooking: serialization conflict for business=%d: %v", req.BusinessID, err)
			return nil, ErrSlotNotAvailable
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("CreateBooking: created booking id=%d, business=%d, status=%s",
		created.ID, created.BusinessID, created.Status)

	// 6. Уведомление после успешного коммита; auto-confirm сразу даёт confirmed
	eventType := notifyservice.EventBookingCreated
	if created.Status == domain.StatusConfirmed {
		eventType = notifyservice.EventBookingConfirmed
	}
	uc.notifyClient.DispatchAsync(eventType, created.ID, created.BusinessID, created.ClientID)

	return buildResponse(created), nil
}

// checkSlot проверяет запрошенный слот внутри транзакции: рабочее окно,
// сетка, lead time и пересечения с активными бронированиями.
// excludeBookingID исключает собственное бронирование при переносе (0 - никого).
func (uc *UseCase) checkSlot(
	ctx context.Context,
	booking *domain.Booking,
	granularity, leadTime int,
	now time.Time,
	excludeBookingID int64,
) error {
	window, err := uc.resolveWindow(ctx, booking.BusinessID, booking.BookingDate)
	if err != nil {
		return err
	}
	if !window.IsOpen {
		return ErrBusinessClosed
	}

	if scheduling.IsDateInPast(booking.BookingDate, now) {
		return fmt.Errorf("%w: date is in the past", ErrInvalidTimeSlot)
	}

	if err := uc.checkWindow(window, booking, granularity); err != nil {
		return err
	}

	// Lead time действует только на сегодняшнюю дату
	if scheduling.IsSameDay(booking.BookingDate, now) {
		startMinutes, err := booking.StartTime.Minutes()
		if err != nil {
			return fmt.Errorf("%w: start_time - %v", ErrInvalidInput, err)
		}
		if startMinutes < now.Hour()*60+now.Minute()+leadTime {
			return ErrTooLateToBook
		}
	}

	// Перечитывание занятости под блокировкой FOR UPDATE
	filter := domain.BusinessBookingsFilter{
		BusinessID:      booking.BusinessID,
		StartDate:       ptr.Ptr(booking.BookingDate),
		EndDate:         ptr.Ptr(booking.BookingDate),
		IncludeInactive: false,
	}
	existing, err := uc.bookingRepo.GetByBusinessWithFilter(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to get existing bookings: %w", err)
	}

	for _, b := range existing {
		if b.ID == excludeBookingID {
			continue
		}
		if !b.IsOccupying() {
			continue
		}
		if scheduling.Overlaps(booking.StartTime, booking.EndTime, b.StartTime, b.EndTime) {
			return fmt.Errorf("%w: overlaps with booking id=%d", ErrSlotNotAvailable, b.ID)
		}
	}

	return nil
}

// checkWindow проверяет слот против рабочего окна: границы, сетка, перерывы
func (uc *UseCase) checkWindow(window domain.DaySchedule, booking *domain.Booking, granularity int) error {
	if booking.StartTime.IsBefore(window.OpenTime) {
		return fmt.Errorf("%w: starts before opening time", ErrInvalidTimeSlot)
	}
	if window.CloseTime.IsBefore(booking.EndTime) {
		return fmt.Errorf("%w: ends after closing time", ErrInvalidTimeSlot)
	}

	openMinutes, err := window.OpenTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: schedule open time is corrupt: %v", ErrInternal, err)
	}
	startMinutes, err := booking.StartTime.Minutes()
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
		if scheduling.Overlaps(booking.StartTime, booking.EndTime, br.Start, br.End) {
			return fmt.Errorf("%w: overlaps with a break", ErrInvalidTimeSlot)
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

func buildResponse(bk *domain.Booking) *Response {
	lines := make([]ServiceLine, 0, len(bk.Services))
	for _, s := range bk.Services {
		lines = append(lines, ServiceLine{
			ServiceID:       s.ServiceID,
			Name:            s.ServiceName,
			DurationMinutes: s.DurationMinutes,
			Price:           s.ServicePrice,
		})
	}

	return &Response{
		BookingID:  bk.ID,
		BusinessID: bk.BusinessID,
		ClientID:   bk.ClientID,
		Status:     string(bk.Status),
		Date:       bk.BookingDate.Format(domain.DateFormat),
		StartTime:  bk.StartTime,
		EndTime:    bk.EndTime,
		Services:   lines,
		TotalPrice: bk.TotalPrice(),
	}
}
