package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogClient "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/integrations/catalogservice"
	scheduleRepo "github.com/atlas-marketplace/ATLAS-SchedulingService/internal/infra/storage/schedule"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/service/schedule/models"
)

// Service сервис управления расписаниями.
// Это поверхность настроек бизнеса: недельное расписание и переопределения
// на даты, которые затем читает резолвер рабочих окон.
type Service struct {
	scheduleRepo  ScheduleRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		txManager:     txManager,
		logger:        logger,
	}
}

// GetWeeklySchedule получает недельное расписание бизнеса.
// Публичная операция - страница бронирования показывает часы работы.
func (s *Service) GetWeeklySchedule(ctx context.Context, businessID int64) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("GetWeeklySchedule: fetching schedule for business=%d", businessID)

	weekly, err := s.scheduleRepo.GetWeeklySchedule(ctx, businessID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetWeeklySchedule: schedule not found for business=%d", businessID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetWeeklySchedule: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWeekly(weekly), nil
}

// PutWeeklySchedule заменяет недельное расписание бизнеса целиком.
// Требует ровно 7 дней; доступно только менеджерам бизнеса.
func (s *Service) PutWeeklySchedule(ctx context.Context, businessID int64, req *models.WeeklyScheduleRequest) (*models.WeeklyScheduleResponse, error) {
	s.logger.Info("PutWeeklySchedule: replacing schedule for business=%d by user=%d", businessID, req.UserID)

	if err := s.checkManagerAccess(ctx, businessID, req.UserID); err != nil {
		return nil, err
	}

	if len(req.Days) != 7 {
		s.logger.Warn("PutWeeklySchedule: expected 7 days, got %d for business=%d", len(req.Days), businessID)
		return nil, fmt.Errorf("%w: exactly 7 weekday entries required, got %d", ErrInvalidSchedule, len(req.Days))
	}

	weekly, err := req.ToDomainWeekly(businessID)
	if err != nil {
		s.logger.Warn("PutWeeklySchedule: invalid schedule for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	// Замена строк и перерывов должна быть атомарной
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.scheduleRepo.ReplaceWeeklySchedule(txCtx, weekly)
	})
	if err != nil {
		s.logger.Error("PutWeeklySchedule: failed to replace schedule for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: PutWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("PutWeeklySchedule: successfully replaced schedule for business=%d", businessID)
	return models.FromDomainWeekly(weekly), nil
}

// GetSpecialDay получает переопределение расписания на дату
func (s *Service) GetSpecialDay(ctx context.Context, businessID int64, day time.Time) (*models.SpecialDayResponse, error) {
	s.logger.Info("GetSpecialDay: fetching override for business=%d, day=%s", businessID, day.Format("2006-01-02"))

	override, err := s.scheduleRepo.GetSpecialDay(ctx, businessID, day)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrSpecialDayNotFound) {
			return nil, ErrSpecialDayNotFound
		}
		s.logger.Error("GetSpecialDay: repository error for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetSpecialDay - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverride(override), nil
}

// PutSpecialDay создает или обновляет переопределение на дату.
// Переопределение полностью заменяет недельное расписание для своей даты.
func (s *Service) PutSpecialDay(ctx context.Context, businessID int64, day time.Time, req *models.SpecialDayRequest) (*models.SpecialDayResponse, error) {
	s.logger.Info("PutSpecialDay: upserting override for business=%d, day=%s by user=%d",
		businessID, day.Format("2006-01-02"), req.UserID)

	if err := s.checkManagerAccess(ctx, businessID, req.UserID); err != nil {
		return nil, err
	}

	override, err := req.ToDomainOverride(businessID, day)
	if err != nil {
		s.logger.Warn("PutSpecialDay: invalid override for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result *models.SpecialDayResponse
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		saved, err := s.scheduleRepo.UpsertSpecialDay(txCtx, override)
		if err != nil {
			return err
		}
		result = models.FromDomainOverride(saved)
		return nil
	})
	if err != nil {
		s.logger.Error("PutSpecialDay: failed to upsert override for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: PutSpecialDay - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("PutSpecialDay: successfully upserted override for business=%d, day=%s",
		businessID, day.Format("2006-01-02"))
	return result, nil
}

// DeleteSpecialDay удаляет переопределение на дату
func (s *Service) DeleteSpecialDay(ctx context.Context, businessID int64, day time.Time, userID int64) error {
	s.logger.Info("DeleteSpecialDay: deleting override for business=%d, day=%s by user=%d",
		businessID, day.Format("2006-01-02"), userID)

	if err := s.checkManagerAccess(ctx, businessID, userID); err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteSpecialDay(ctx, businessID, day); err != nil {
		if errors.Is(err, scheduleRepo.ErrSpecialDayNotFound) {
			return ErrSpecialDayNotFound
		}
		s.logger.Error("DeleteSpecialDay: repository error for business=%d: %v", businessID, err)
		return fmt.Errorf("%w: DeleteSpecialDay - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteSpecialDay: successfully deleted override for business=%d, day=%s",
		businessID, day.Format("2006-01-02"))
	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером бизнеса
func (s *Service) checkManagerAccess(ctx context.Context, businessID int64, userID int64) error {
	business, err := s.catalogClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrBusinessNotFound) {
			s.logger.Warn("checkManagerAccess: business id=%d not found", businessID)
			return ErrBusinessNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get business id=%d: %v", businessID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get business: %v", ErrInternal, err)
	}

	for _, managerID := range business.ManagerIDs {
		if managerID == userID {
			return nil
		}
	}

	s.logger.Warn("checkManagerAccess: user=%d is not a manager of business=%d", userID, businessID)
	return ErrAccessDenied
}
