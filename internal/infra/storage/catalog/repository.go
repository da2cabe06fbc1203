package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/psqlbuilder"
)

// Repository репозиторий каталога: услуги, группы, аппараты, рабочие часы
// Каталог ведется внешней системой, здесь только чтение
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория каталога
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetServicesByIDs получает услуги по списку ID
// Порядок результата - по возрастанию ID; отсутствующие ID просто не попадают
// в результат, проверка полноты - забота вызывающего кода
func (r *Repository) GetServicesByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "group_id", "name", "duration_minutes", "price").
		From("services").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetServicesByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetServicesByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0, len(ids))
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name, &s.DurationMinutes, &s.Price); err != nil {
			return nil, fmt.Errorf("%w: GetServicesByIDs - scan service: %v", ErrScanRow, err)
		}
		services = append(services, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetServicesByIDs - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// GetGroupByID получает группу услуг вместе со списком разрешенных аппаратов
func (r *Repository) GetGroupByID(ctx context.Context, id int64) (*domain.ServiceGroup, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "has_devices", "allow_multiple_selection").
		From("service_groups").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetGroupByID - build select query: %v", ErrBuildQuery, err)
	}

	var group domain.ServiceGroup
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&group.ID,
		&group.Name,
		&group.HasDevices,
		&group.AllowMultipleSelection,
	)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetGroupByID - scan group: %v", ErrScanRow, err)
	}

	deviceIDs, err := r.listGroupDeviceIDs(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	group.AvailableDeviceIDs = deviceIDs

	return &group, nil
}

// ListGroups получает все группы услуг
func (r *Repository) ListGroups(ctx context.Context) ([]*domain.ServiceGroup, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "has_devices", "allow_multiple_selection").
		From("service_groups").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListGroups - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListGroups - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	groups := make([]*domain.ServiceGroup, 0)
	for rows.Next() {
		var g domain.ServiceGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.HasDevices, &g.AllowMultipleSelection); err != nil {
			return nil, fmt.Errorf("%w: ListGroups - scan group: %v", ErrScanRow, err)
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListGroups - rows error: %v", ErrScanRow, err)
	}

	for _, g := range groups {
		deviceIDs, err := r.listGroupDeviceIDs(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.AvailableDeviceIDs = deviceIDs
	}

	return groups, nil
}

// ListServicesByGroup получает услуги группы
func (r *Repository) ListServicesByGroup(ctx context.Context, groupID int64) ([]*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "group_id", "name", "duration_minutes", "price").
		From("services").
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListServicesByGroup - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListServicesByGroup - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.GroupID, &s.Name, &s.DurationMinutes, &s.Price); err != nil {
			return nil, fmt.Errorf("%w: ListServicesByGroup - scan service: %v", ErrScanRow, err)
		}
		services = append(services, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListServicesByGroup - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}

// GetDevicesByIDs получает аппараты по списку ID
func (r *Repository) GetDevicesByIDs(ctx context.Context, ids []int64) ([]*domain.Device, error) {
	if len(ids) == 0 {
		return []*domain.Device{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name").
		From("devices").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetDevicesByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDevicesByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	devices := make([]*domain.Device, 0, len(ids))
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("%w: GetDevicesByIDs - scan device: %v", ErrScanRow, err)
		}
		devices = append(devices, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetDevicesByIDs - rows error: %v", ErrScanRow, err)
	}

	return devices, nil
}

// ListServiceWorkHours получает рабочие часы услуги для указанных дней недели
// и с учетом фильтра по полу. Строки с gender_scope = ALL подходят всем;
// scopes передает вызывающий код (политика гостя решается выше).
// Порядок детерминированный: день недели, затем время начала
func (r *Repository) ListServiceWorkHours(ctx context.Context, serviceID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error) {
	return r.listWorkHours(ctx, squirrel.Eq{"service_id": serviceID}, weekdays, scopes)
}

// ListGroupWorkHours получает рабочие часы группы услуг (фолбэк,
// когда у услуги нет собственных строк)
func (r *Repository) ListGroupWorkHours(ctx context.Context, groupID int64, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error) {
	return r.listWorkHours(ctx, squirrel.Eq{"service_group_id": groupID}, weekdays, scopes)
}

func (r *Repository) listWorkHours(ctx context.Context, owner squirrel.Eq, weekdays []int, scopes []domain.GenderScope) ([]*domain.WorkHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	scopeStrings := make([]string, len(scopes))
	for i, s := range scopes {
		scopeStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"day_of_week",
		"start_time",
		"end_time",
		"service_group_id",
		"service_id",
		"gender_scope",
	).
		From("work_hours").
		Where(owner).
		Where(squirrel.Eq{"day_of_week": weekdays}).
		Where(squirrel.Eq{"gender_scope": scopeStrings}).
		OrderBy("day_of_week ASC", "start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listWorkHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listWorkHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	workHours := make([]*domain.WorkHours, 0)
	for rows.Next() {
		var wh domain.WorkHours
		err := rows.Scan(
			&wh.ID,
			&wh.DayOfWeek,
			&wh.StartTime,
			&wh.EndTime,
			&wh.ServiceGroupID,
			&wh.ServiceID,
			&wh.GenderScope,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: listWorkHours - scan work hours: %v", ErrScanRow, err)
		}
		workHours = append(workHours, &wh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listWorkHours - rows error: %v", ErrScanRow, err)
	}

	return workHours, nil
}

func (r *Repository) listGroupDeviceIDs(ctx context.Context, groupID int64) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("device_id").
		From("service_group_devices").
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("device_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listGroupDeviceIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listGroupDeviceIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: listGroupDeviceIDs - scan device_id: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listGroupDeviceIDs - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}
