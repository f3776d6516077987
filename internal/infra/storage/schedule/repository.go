package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/internal/domain"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/dbmetrics"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/psqlbuilder"
	"github.com/atlas-marketplace/ATLAS-SchedulingService/pkg/types"
)

// Repository репозиторий недельного расписания и переопределений на даты
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetWeeklySchedule получает недельное расписание бизнеса вместе с перерывами.
// Дни без строки в БД считаются закрытыми - этим занимается domain.WeeklySchedule.DayFor.
func (r *Repository) GetWeeklySchedule(ctx context.Context, businessID int64) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"weekday",
		"is_open",
		"open_time",
		"close_time",
	).
		From("weekly_schedules").
		Where(squirrel.Eq{"business_id": businessID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklySchedule - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWeeklySchedule - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	weekly := &domain.WeeklySchedule{
		BusinessID: businessID,
		Days:       make(map[time.Weekday]domain.DaySchedule, 7),
	}
	dayIDs := make([]int64, 0, 7)
	byID := make(map[int64]time.Weekday, 7)

	for rows.Next() {
		var day domain.DaySchedule
		var weekday int
		var openTime, closeTime sql.NullString

		if err := rows.Scan(&day.ID, &weekday, &day.IsOpen, &openTime, &closeTime); err != nil {
			return nil, fmt.Errorf("%w: GetWeeklySchedule - scan row: %v", ErrScanRow, err)
		}

		day.BusinessID = businessID
		day.Weekday = time.Weekday(weekday)
		if openTime.Valid {
			if err := day.OpenTime.Scan(openTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetWeeklySchedule - parse open_time: %v", ErrScanRow, err)
			}
		}
		if closeTime.Valid {
			if err := day.CloseTime.Scan(closeTime.String); err != nil {
				return nil, fmt.Errorf("%w: GetWeeklySchedule - parse close_time: %v", ErrScanRow, err)
			}
		}

		weekly.Days[day.Weekday] = day
		dayIDs = append(dayIDs, day.ID)
		byID[day.ID] = day.Weekday
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetWeeklySchedule - rows error: %v", ErrScanRow, err)
	}

	if len(weekly.Days) == 0 {
		return nil, ErrScheduleNotFound
	}

	// Подгружаем перерывы одним запросом и раскладываем по дням
	breaksByDay, err := r.loadBreaks(ctx, executor, "weekly_schedule_id", dayIDs)
	if err != nil {
		return nil, err
	}
	for id, breaks := range breaksByDay {
		weekday := byID[id]
		day := weekly.Days[weekday]
		day.Breaks = breaks
		weekly.Days[weekday] = day
	}

	return weekly, nil
}

// ReplaceWeeklySchedule заменяет недельное расписание бизнеса целиком.
// Вызывается внутри транзакции сервисного слоя: старые строки и их перерывы
// удаляются, новые вставляются одним проходом.
func (r *Repository) ReplaceWeeklySchedule(ctx context.Context, weekly *domain.WeeklySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("weekly_schedules").
		Where(squirrel.Eq{"business_id": weekly.BusinessID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceWeeklySchedule - build delete query: %v", ErrBuildQuery, err)
	}

	// schedule_breaks удаляются каскадом по FK
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: ReplaceWeeklySchedule - delete old rows: %v", ErrExecQuery, err)
	}

	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		day, ok := weekly.Days[weekday]
		if !ok {
			continue
		}

		query, args, err := psqlbuilder.Insert("weekly_schedules").
			Columns("business_id", "weekday", "is_open", "open_time", "close_time").
			Values(weekly.BusinessID, int(weekday), day.IsOpen, nullableTime(day.OpenTime), nullableTime(day.CloseTime)).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: ReplaceWeeklySchedule - build insert query: %v", ErrBuildQuery, err)
		}

		var dayID int64
		if err := executor.QueryRowContext(ctx, query, args...).Scan(&dayID); err != nil {
			return fmt.Errorf("%w: ReplaceWeeklySchedule - insert day: %v", ErrExecQuery, err)
		}

		if err := r.insertBreaks(ctx, executor, "weekly_schedule_id", dayID, day.Breaks); err != nil {
			return err
		}
	}

	return nil
}

// GetSpecialDay получает переопределение расписания на конкретную дату
func (r *Repository) GetSpecialDay(ctx context.Context, businessID int64, day time.Time) (*domain.SpecialDayOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"day",
		"is_closed",
		"open_time",
		"close_time",
		"notes",
		"created_at",
		"updated_at",
	).
		From("special_days").
		Where(squirrel.Eq{"business_id": businessID, "day": day}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialDay - build select query: %v", ErrBuildQuery, err)
	}

	var override domain.SpecialDayOverride
	var openTime, closeTime sql.NullString
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&override.ID,
		&override.BusinessID,
		&override.Day,
		&override.IsClosed,
		&openTime,
		&closeTime,
		&override.Notes,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSpecialDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialDay - scan row: %v", ErrScanRow, err)
	}

	if openTime.Valid {
		if err := override.OpenTime.Scan(openTime.String); err != nil {
			return nil, fmt.Errorf("%w: GetSpecialDay - parse open_time: %v", ErrScanRow, err)
		}
	}
	if closeTime.Valid {
		if err := override.CloseTime.Scan(closeTime.String); err != nil {
			return nil, fmt.Errorf("%w: GetSpecialDay - parse close_time: %v", ErrScanRow, err)
		}
	}
	override.CreatedAt = createdAt.Time
	override.UpdatedAt = updatedAt.Time

	breaksByID, err := r.loadBreaks(ctx, executor, "special_day_id", []int64{override.ID})
	if err != nil {
		return nil, err
	}
	override.Breaks = breaksByID[override.ID]

	return &override, nil
}

// UpsertSpecialDay создает или обновляет переопределение на дату.
// Перерывы заменяются целиком.
func (r *Repository) UpsertSpecialDay(ctx context.Context, override *domain.SpecialDayOverride) (*domain.SpecialDayOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("special_days").
		Columns("business_id", "day", "is_closed", "open_time", "close_time", "notes").
		Values(
			override.BusinessID,
			override.Day,
			override.IsClosed,
			nullableTime(override.OpenTime),
			nullableTime(override.CloseTime),
			override.Notes,
		).
		Suffix(`ON CONFLICT (business_id, day) DO UPDATE SET
			is_closed = EXCLUDED.is_closed,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDay - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&override.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDay - execute upsert: %v", ErrExecQuery, err)
	}

	override.CreatedAt = createdAt.Time
	override.UpdatedAt = updatedAt.Time

	// Заменяем перерывы целиком
	deleteQuery, deleteArgs, err := psqlbuilder.Delete("schedule_breaks").
		Where(squirrel.Eq{"special_day_id": override.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDay - build delete breaks query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialDay - delete breaks: %v", ErrExecQuery, err)
	}

	if err := r.insertBreaks(ctx, executor, "special_day_id", override.ID, override.Breaks); err != nil {
		return nil, err
	}

	return override, nil
}

// DeleteSpecialDay удаляет переопределение на дату
func (r *Repository) DeleteSpecialDay(ctx context.Context, businessID int64, day time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("special_days").
		Where(squirrel.Eq{"business_id": businessID, "day": day}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDay - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDay - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialDay - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSpecialDayNotFound
	}

	return nil
}

// insertBreaks вставляет перерывы для строки расписания или переопределения
func (r *Repository) insertBreaks(
	ctx context.Context,
	executor dbmetrics.DBExecutor,
	parentColumn string,
	parentID int64,
	breaks []domain.BreakInterval,
) error {
	if len(breaks) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("schedule_breaks").
		Columns(parentColumn, "start_time", "end_time")

	for _, br := range breaks {
		insertBuilder = insertBuilder.Values(parentID, br.Start, br.End)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertBreaks - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertBreaks - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// loadBreaks подгружает перерывы для набора родительских строк
func (r *Repository) loadBreaks(
	ctx context.Context,
	executor dbmetrics.DBExecutor,
	parentColumn string,
	parentIDs []int64,
) (map[int64][]domain.BreakInterval, error) {
	if len(parentIDs) == 0 {
		return map[int64][]domain.BreakInterval{}, nil
	}

	query, args, err := psqlbuilder.Select(parentColumn, "start_time", "end_time").
		From("schedule_breaks").
		Where(squirrel.Eq{parentColumn: parentIDs}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]domain.BreakInterval)
	for rows.Next() {
		var parentID int64
		var br domain.BreakInterval

		if err := rows.Scan(&parentID, &br.Start, &br.End); err != nil {
			return nil, fmt.Errorf("%w: loadBreaks - scan row: %v", ErrScanRow, err)
		}

		result[parentID] = append(result[parentID], br)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadBreaks - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// nullableTime NULL для незаданного времени (закрытый день хранит NULL)
func nullableTime(ts types.TimeString) interface{} {
	if ts.IsZero() {
		return nil
	}
	return ts
}
