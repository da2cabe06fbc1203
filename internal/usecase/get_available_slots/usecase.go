package get_available_slots

import (
	"context"
	"time"

	"github.com/simaclinic/booking-service/internal/domain"
)

// UseCase use case для получения доступных слотов на запись
//
// Чтение доступности никогда не возвращает внутренние ошибки наружу:
// при любом сбое разрешения (каталог, рабочие часы, занятые интервалы)
// возвращается пустой результат. Показать "нет слотов" безопаснее, чем
// показать устаревшие или неверные слоты. Финальную проверку коллизий
// все равно делает транзакция бронирования
type UseCase struct {
	catalogRepo     CatalogRepository
	appointmentRepo AppointmentRepository
	timeProvider    TimeProvider
	logger          Logger

	// loc фиксированная таймзона клиники, вся интервальная арифметика в ней
	loc *time.Location

	// guestScope ограничение по полу для гостей и пациентов без указанного пола
	guestScope domain.GenderScope
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	catalogRepo CatalogRepository,
	appointmentRepo AppointmentRepository,
	loc *time.Location,
	guestScope domain.GenderScope,
	logger Logger,
) *UseCase {
	return &UseCase{
		catalogRepo:     catalogRepo,
		appointmentRepo: appointmentRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
		loc:             loc,
		guestScope:      guestScope,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: services=%v, device=%v, range=%s..%s",
		req.ServiceIDs, req.DeviceID,
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в таймзоне клиники
	now := uc.timeProvider.Now().In(uc.loc)

	// 3. Разрешаем услуги; все должны существовать и принадлежать одной группе
	services, err := uc.catalogRepo.GetServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get services %v: %v", req.ServiceIDs, err)
		return emptyResponse(), nil
	}
	if len(services) != len(req.ServiceIDs) {
		uc.logger.Warn("GetAvailableSlots: unknown service ids in %v", req.ServiceIDs)
		return emptyResponse(), nil
	}

	groupID := services[0].GroupID
	totalDuration := 0
	for _, svc := range services {
		if svc.GroupID != groupID {
			uc.logger.Warn("GetAvailableSlots: services %v belong to different groups", req.ServiceIDs)
			return emptyResponse(), nil
		}
		totalDuration += svc.DurationMinutes
	}

	if totalDuration <= 0 {
		uc.logger.Warn("GetAvailableSlots: total duration is not positive for services %v", req.ServiceIDs)
		return emptyResponse(), nil
	}

	// 4. Разрешаем группу и выбираем ресурс коллизий
	group, err := uc.catalogRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get group id=%d: %v", groupID, err)
		return emptyResponse(), nil
	}

	resource := domain.NoDeviceResource()
	if group.HasDevices {
		if req.DeviceID == nil {
			uc.logger.Warn("GetAvailableSlots: group id=%d requires a device, none supplied", groupID)
			return emptyResponse(), nil
		}
		if !group.AllowsDevice(*req.DeviceID) {
			uc.logger.Warn("GetAvailableSlots: device id=%d is not allowed for group id=%d", *req.DeviceID, groupID)
			return emptyResponse(), nil
		}
		resource = domain.DeviceResource(*req.DeviceID)
	}

	// 5. Дни строго раньше сегодняшнего пропускаются
	firstDay := startOfDay(req.StartDate, uc.loc)
	today := startOfDay(now, uc.loc)
	if firstDay.Before(today) {
		firstDay = today
	}
	lastDay := startOfDay(req.EndDate, uc.loc)
	if lastDay.Before(firstDay) {
		return emptyResponse(), nil
	}

	// 6. Рабочие часы по дням недели с фоллбэком услуга -> группа
	weekdays := weekdaysInRange(firstDay, lastDay)
	scopes := genderScopes(req.Gender, uc.guestScope)

	openByWeekday, err := uc.resolveOpenIntervals(ctx, services[0], weekdays, scopes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to resolve work hours: %v", err)
		return emptyResponse(), nil
	}
	if len(openByWeekday) == 0 {
		uc.logger.Info("GetAvailableSlots: no work hours for services %v in range", req.ServiceIDs)
		return emptyResponse(), nil
	}

	// 7. Занятые интервалы ресурса на весь диапазон одним запросом
	occupied, err := uc.appointmentRepo.ListOccupied(ctx, firstDay, lastDay.AddDate(0, 0, 1), resource)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list occupied intervals for %s: %v", resource, err)
		return emptyResponse(), nil
	}
	occupiedByDate := bucketOccupiedByDate(occupied, uc.loc)

	// 8. Обход дней: каждый рабочий интервал дня генерирует слоты независимо
	days := make(map[string][]domain.Slot)
	total := 0

	for day := firstDay; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		periods := openByWeekday[domain.ClinicWeekday(day.Weekday())]
		if len(periods) == 0 {
			continue
		}

		dayOccupied := occupiedByDate[day.Format(domain.DateFormat)]

		daySlots := make([]domain.Slot, 0)
		for _, period := range periods {
			slots, err := walkPeriod(day, period, totalDuration, now, dayOccupied, uc.loc)
			if err != nil {
				uc.logger.Error("GetAvailableSlots: failed to walk period id=%d: %v", period.ID, err)
				return emptyResponse(), nil
			}
			daySlots = append(daySlots, slots...)
		}

		// Дни без слотов в ответ не включаются
		if len(daySlots) > 0 {
			days[jalaliDateKey(day)] = daySlots
			total += len(daySlots)
		}
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots across %d days for resource %s",
		total, len(days), resource)

	return &Response{Days: days}, nil
}

// weekdaysInRange возвращает дни недели клиники, встречающиеся в диапазоне дат
func weekdaysInRange(firstDay, lastDay time.Time) []int {
	seen := make(map[int]bool, 7)
	weekdays := make([]int, 0, 7)

	for day := firstDay; !day.After(lastDay) && len(weekdays) < 7; day = day.AddDate(0, 0, 1) {
		wd := domain.ClinicWeekday(day.Weekday())
		if !seen[wd] {
			seen[wd] = true
			weekdays = append(weekdays, wd)
		}
	}

	return weekdays
}
