package catalog

import "errors"

var (
	// ErrGroupNotFound возвращается, когда группа услуг не найдена
	ErrGroupNotFound = errors.New("service group not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
