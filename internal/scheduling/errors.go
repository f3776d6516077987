package scheduling

import "errors"

var (
	// ErrInvalidDuration возвращается при неположительной длительности услуг
	ErrInvalidDuration = errors.New("scheduling: total duration must be positive")

	// ErrInvalidGranularity возвращается при неположительном шаге генерации слотов
	ErrInvalidGranularity = errors.New("scheduling: granularity must be positive")

	// ErrInvalidLeadTime возвращается при отрицательном минимальном времени до брони
	ErrInvalidLeadTime = errors.New("scheduling: lead time must not be negative")

	// ErrInvalidWindow возвращается при некорректном рабочем окне
	ErrInvalidWindow = errors.New("scheduling: invalid working window")
)
