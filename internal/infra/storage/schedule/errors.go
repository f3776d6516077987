package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у бизнеса нет недельного расписания
	ErrScheduleNotFound = errors.New("schedule.repository: weekly schedule not found")

	// ErrSpecialDayNotFound возвращается, когда переопределение на дату не найдено
	ErrSpecialDayNotFound = errors.New("schedule.repository: special day override not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
