package get_available_slots

import (
	"context"
	"fmt"

	"github.com/simaclinic/booking-service/internal/domain"
)

// genderScopes возвращает список ограничений по полу, которым должен
// удовлетворять рабочий интервал для данного пациента. Интервалы ALL
// доступны всем; для пациента с указанным полом добавляется его скоуп.
// Для гостя используется настраиваемый скоуп клиники (по умолчанию ALL)
func genderScopes(gender *domain.Gender, guestScope domain.GenderScope) []domain.GenderScope {
	if gender != nil {
		return []domain.GenderScope{domain.GenderScopeAll, domain.GenderScope(*gender)}
	}
	if guestScope == domain.GenderScopeAll {
		return []domain.GenderScope{domain.GenderScopeAll}
	}
	return []domain.GenderScope{domain.GenderScopeAll, guestScope}
}

// resolveOpenIntervals определяет рабочие интервалы по дням недели клиники.
// Сначала ищутся часы, привязанные к самой услуге; если их нет ни на один
// из запрошенных дней, используются часы группы услуг. Дальнейшего фоллбэка
// нет: если и у группы часов нет, эти дни считаются закрытыми
func (uc *UseCase) resolveOpenIntervals(
	ctx context.Context,
	service *domain.Service,
	weekdays []int,
	scopes []domain.GenderScope,
) (map[int][]*domain.WorkHours, error) {
	rows, err := uc.catalogRepo.ListServiceWorkHours(ctx, service.ID, weekdays, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to list service work hours: %w", err)
	}

	if len(rows) == 0 {
		rows, err = uc.catalogRepo.ListGroupWorkHours(ctx, service.GroupID, weekdays, scopes)
		if err != nil {
			return nil, fmt.Errorf("failed to list group work hours: %w", err)
		}
	}

	// Группируем по дню недели; порядок внутри дня сохраняется как в
	// хранилище (по start_time), пересекающиеся интервалы не склеиваются -
	// каждый обрабатывается генератором слотов независимо (разрывные смены)
	byDay := make(map[int][]*domain.WorkHours, len(rows))
	for _, row := range rows {
		byDay[row.DayOfWeek] = append(byDay[row.DayOfWeek], row)
	}

	return byDay, nil
}
