package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у бизнеса нет недельного расписания
	ErrScheduleNotFound = errors.New("weekly schedule not found")

	// ErrSpecialDayNotFound возвращается, когда переопределение на дату не найдено
	ErrSpecialDayNotFound = errors.New("special day override not found")

	// ErrBusinessNotFound возвращается, когда бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidSchedule возвращается при некорректном расписании
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
