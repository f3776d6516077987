package create_booking

import "errors"

var (
	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("invalid input data")
	// ErrBusinessNotFound бизнес не найден
	ErrBusinessNotFound = errors.New("business not found")
	// ErrServiceNotFound услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("service not found or inactive")
	// ErrBusinessClosed бизнес закрыт в выбранную дату
	ErrBusinessClosed = errors.New("business is closed on the requested date")
	// ErrInvalidTimeSlot слот не соответствует расписанию бизнеса
	ErrInvalidTimeSlot = errors.New("requested time slot does not match the business schedule")
	// ErrTooLateToBook слот начинается раньше минимального времени упреждения
	ErrTooLateToBook = errors.New("requested time slot is too soon to book")
	// ErrSlotNotAvailable слот уже занят другим бронированием
	ErrSlotNotAvailable = errors.New("slot is not available")
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
