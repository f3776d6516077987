package booking

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

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var bookingColumns = []string{
	"id",
	"business_id",
	"client_id",
	"booking_date",
	"start_time",
	"end_time",
	"status",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Create создает новое бронирование вместе со строками услуг.
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Проверка занятости слота НЕ выполняется здесь - она обязанность usecase,
// который вызывает Create внутри сериализуемой транзакции после перечитывания
// занятых интервалов с блокировкой.
func (r *Repository) Create(ctx context.Context, bk *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"business_id",
			"client_id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"notes",
		).
		Values(
			bk.BusinessID,
			bk.ClientID,
			bk.BookingDate,
			bk.StartTime,
			bk.EndTime,
			bk.Status,
			bk.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&bk.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	bk.CreatedAt = createdAt.Time
	bk.UpdatedAt = updatedAt.Time

	if err := r.insertServices(ctx, executor, bk.ID, bk.Services); err != nil {
		return nil, err
	}

	return bk, nil
}

// insertServices вставляет строки услуг бронирования
func (r *Repository) insertServices(ctx context.Context, executor DBExecutor, bookingID int64, services []domain.BookingService) error {
	if len(services) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("booking_services").
		Columns("booking_id", "service_id", "service_name", "service_price", "duration_minutes")

	for _, s := range services {
		insertBuilder = insertBuilder.Values(bookingID, s.ServiceID, s.ServiceName, s.ServicePrice, s.DurationMinutes)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertServices - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insertServices - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID вместе со строками услуг
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var bk domain.Booking
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&bk.ID,
		&bk.BusinessID,
		&bk.ClientID,
		&bk.BookingDate,
		&bk.StartTime,
		&bk.EndTime,
		&bk.Status,
		&bk.Notes,
		&bk.CancellationReason,
		&bk.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	bk.CreatedAt = createdAt.Time
	bk.UpdatedAt = updatedAt.Time

	if err := r.loadServices(ctx, executor, []*domain.Booking{&bk}); err != nil {
		return nil, err
	}

	return &bk, nil
}

// GetByClientID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"client_id": clientID}).
		OrderBy("booking_date DESC, start_time DESC")

	// Фильтрация по статусу, если указан
	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByClientID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadServices(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// GetByBusinessWithFilter получает бронирования бизнеса с гибкой фильтрацией.
// Поддерживает фильтрацию по периоду, статусу и включению неактивных бронирований.
//
// Когда запрос выполняется внутри транзакции и фильтр указывает на одну
// конкретную дату, строки блокируются через FOR UPDATE - так usecase создания
// бронирования сериализует конкурентные коммиты на один календарь.
func (r *Repository) GetByBusinessWithFilter(ctx context.Context, filter domain.BusinessBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"business_id": filter.BusinessID})

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	singleDate := filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate)

	// Для конкретной даты сортируем по времени начала, иначе сначала новые
	if singleDate {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_time DESC")
	}

	// Блокировка строк для проверки занятости внутри транзакции
	if dbmetrics.IsInTransaction(ctx) && singleDate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBusinessWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadServices(ctx, executor, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// UpdateSlot переносит бронирование на новый слот и заменяет строки услуг.
// Вызывается только внутри сериализуемой транзакции usecase'а переноса,
// после успешной перепроверки занятости целевого слота.
func (r *Repository) UpdateSlot(
	ctx context.Context,
	id int64,
	date time.Time,
	startTime, endTime types.TimeString,
	services []domain.BookingService,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("booking_date", date).
		Set("start_time", startTime).
		Set("end_time", endTime).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	// Заменяем строки услуг целиком
	deleteQuery, deleteArgs, err := psqlbuilder.Delete("booking_services").
		Where(squirrel.Eq{"booking_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - build delete services query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: UpdateSlot - delete services: %v", ErrExecQuery, err)
	}

	return r.insertServices(ctx, executor, id, services)
}

// Cancel отменяет бронирование с указанием причины.
// Статусный предикат в самом UPDATE закрывает гонку между проверкой
// статуса и отменой: запись в терминальном статусе не перезаписывается.
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cancellableStatusStrings := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		cancellableStatusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": cancellableStatusStrings}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Записи нет либо её статус уже терминальный
		return ErrCannotCancel
	}

	return nil
}

// CompletePast переводит в completed все активные бронирования, чьё время
// окончания уже прошло. Один UPDATE: повторный запуск не находит строк и
// возвращает 0 - операция идемпотентна.
func (r *Repository) CompletePast(ctx context.Context, today time.Time, nowTime types.TimeString) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	occupyingStatusStrings := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		occupyingStatusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": occupyingStatusStrings}).
		Where(squirrel.Or{
			squirrel.Lt{"booking_date": today},
			squirrel.And{
				squirrel.Eq{"booking_date": today},
				squirrel.LtOrEq{"end_time": nowTime},
			},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CompletePast - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompletePast - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompletePast - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var bk domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&bk.ID,
			&bk.BusinessID,
			&bk.ClientID,
			&bk.BookingDate,
			&bk.StartTime,
			&bk.EndTime,
			&bk.Status,
			&bk.Notes,
			&bk.CancellationReason,
			&bk.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		bk.CreatedAt = createdAt.Time
		bk.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &bk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// loadServices подгружает строки услуг для набора бронирований одним запросом
func (r *Repository) loadServices(ctx context.Context, executor DBExecutor, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]int64, len(bookings))
	byID := make(map[int64]*domain.Booking, len(bookings))
	for i, bk := range bookings {
		ids[i] = bk.ID
		byID[bk.ID] = bk
	}

	query, args, err := psqlbuilder.Select(
		"booking_id",
		"service_id",
		"service_name",
		"service_price",
		"duration_minutes",
	).
		From("booking_services").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("booking_id ASC, service_id ASC").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: loadServices - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadServices - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID int64
		var svc domain.BookingService

		if err := rows.Scan(&bookingID, &svc.ServiceID, &svc.ServiceName, &svc.ServicePrice, &svc.DurationMinutes); err != nil {
			return fmt.Errorf("%w: loadServices - scan row: %v", ErrScanRow, err)
		}

		if bk, ok := byID[bookingID]; ok {
			bk.Services = append(bk.Services, svc)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadServices - rows error: %v", ErrScanRow, err)
	}

	return nil
}
