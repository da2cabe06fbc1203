package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrServiceNotFound возвращается, когда хотя бы одна из услуг не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrMixedServiceGroups возвращается, когда выбранные услуги из разных групп
	ErrMixedServiceGroups = errors.New("services belong to different groups")

	// ErrMultipleServicesNotAllowed возвращается, когда группа запрещает
	// выбор нескольких услуг в одной записи
	ErrMultipleServicesNotAllowed = errors.New("group does not allow multiple services")

	// ErrDeviceRequired возвращается, когда группа требует аппарат, а он не выбран
	ErrDeviceRequired = errors.New("device is required for this service group")

	// ErrDeviceNotAllowed возвращается, когда выбранный аппарат не разрешен для группы
	ErrDeviceNotAllowed = errors.New("device is not allowed for this service group")

	// ErrPastStartTime возвращается при попытке записи на прошедшее время
	ErrPastStartTime = errors.New("start time must be in the future")

	// ErrSlotTaken возвращается, когда выбранный интервал уже занят
	// Повторная попытка с другим слотом остается за пациентом,
	// сервис никогда не подбирает другое время сам
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrPatientNotFound возвращается, когда пациент не найден
	ErrPatientNotFound = errors.New("patient not found")

	// ErrInsufficientPoints возвращается при нехватке бонусных баллов
	ErrInsufficientPoints = errors.New("insufficient points balance")

	// ErrDiscountCodeNotFound возвращается, когда код скидки не найден
	ErrDiscountCodeNotFound = errors.New("discount code not found")

	// ErrDiscountCodeNotApplicable возвращается, когда код скидки просрочен,
	// уже использован или привязан к другому пациенту
	ErrDiscountCodeNotApplicable = errors.New("discount code is not applicable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
