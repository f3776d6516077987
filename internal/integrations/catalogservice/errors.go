package catalogservice

import "errors"

var (
	// ErrBusinessNotFound возвращается, когда бизнес не найден в каталоге
	ErrBusinessNotFound = errors.New("business not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceInactive возвращается, когда услуга отключена и недоступна для записи
	ErrServiceInactive = errors.New("service is not active")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")
)
