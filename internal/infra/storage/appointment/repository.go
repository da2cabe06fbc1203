package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/psqlbuilder"
)

// appointmentColumns полный список колонок таблицы appointments
var appointmentColumns = []string{
	"id",
	"patient_id",
	"device_id",
	"tracking_code",
	"start_time",
	"end_time",
	"status",
	"points_discount_amount",
	"points_used",
	"discount_code_id",
	"code_discount_amount",
	"total_price",
	"is_rated",
	"points_awarded",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на прием
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись вместе со связями на услуги
// Должен вызываться внутри транзакции (через контекст), чтобы вставка
// записи и её услуг была атомарной
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"patient_id",
			"device_id",
			"tracking_code",
			"start_time",
			"end_time",
			"status",
			"points_discount_amount",
			"points_used",
			"discount_code_id",
			"code_discount_amount",
			"total_price",
		).
		Values(
			appt.PatientID,
			appt.DeviceID,
			appt.TrackingCode,
			appt.StartTime,
			appt.EndTime,
			appt.Status,
			appt.PointsDiscountAmount,
			appt.PointsUsed,
			appt.DiscountCodeID,
			appt.CodeDiscountAmount,
			appt.TotalPrice,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	// Связи запись-услуга
	servicesInsert := psqlbuilder.Insert("appointment_services").
		Columns("appointment_id", "service_id")
	for _, serviceID := range appt.ServiceIDs {
		servicesInsert = servicesInsert.Values(appt.ID, serviceID)
	}

	query, args, err = servicesInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build services insert: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert appointment services: %v", ErrExecQuery, err)
	}

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByTrackingCode получает запись по коду отслеживания (гостевой доступ)
func (r *Repository) GetByTrackingCode(ctx context.Context, code string) (*domain.Appointment, error) {
	return r.getOne(ctx, squirrel.Eq{"tracking_code": code})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan appointment: %v", ErrScanRow, err)
	}

	if err := r.loadServiceIDs(ctx, appt); err != nil {
		return nil, err
	}

	return appt, nil
}

// ListOccupied возвращает интервалы записей, занимающих указанный ресурс
// и пересекающихся с [from, to) - полуоткрытый тест пересечения.
// Учитываются только статусы PENDING и CONFIRMED.
// Внутри транзакции добавляется FOR UPDATE: строки блокируются до коммита,
// что исключает одновременное бронирование одного интервала
func (r *Repository) ListOccupied(ctx context.Context, from, to time.Time, resource domain.ResourceSelector) ([]domain.Interval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("start_time", "end_time").
		From("appointments").
		Where(squirrel.Eq{"status": occupyingStatusStrings()}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from}).
		OrderBy("start_time ASC")

	selectBuilder = applyResourceFilter(selectBuilder, resource)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	intervals := make([]domain.Interval, 0)
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("%w: ListOccupied - scan interval: %v", ErrScanRow, err)
		}
		intervals = append(intervals, iv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOccupied - rows error: %v", ErrScanRow, err)
	}

	return intervals, nil
}

// ListByPatient получает записи пациента, опционально фильтруя по статусу
func (r *Repository) ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByPatient - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, err
	}

	for _, appt := range appts {
		if err := r.loadServiceIDs(ctx, appt); err != nil {
			return nil, err
		}
	}

	return appts, nil
}

// ListForDay получает записи клиники на один локальный календарный день
// Используется панелью ресепшена
func (r *Repository) ListForDay(ctx context.Context, dayStart, dayEnd time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Lt{"start_time": dayEnd}).
		Where(squirrel.GtOrEq{"start_time": dayStart}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListForDay - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListForDay - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, err
	}

	for _, appt := range appts {
		if err := r.loadServiceIDs(ctx, appt); err != nil {
			return nil, err
		}
	}

	return appts, nil
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// MarkPointsAwarded помечает, что бонусные баллы за визит начислены
func (r *Repository) MarkPointsAwarded(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("points_awarded", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "points_awarded": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPointsAwarded - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPointsAwarded - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// CancelExpiredPending отменяет записи, ждущие оплаты дольше cutoff
// Возвращает количество отмененных записей
func (r *Repository) CancelExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCanceled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelExpiredPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CancelExpiredPending - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CancelExpiredPending - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// loadServiceIDs подгружает ID услуг записи
func (r *Repository) loadServiceIDs(ctx context.Context, appt *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("service_id").
		From("appointment_services").
		Where(squirrel.Eq{"appointment_id": appt.ID}).
		OrderBy("service_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadServiceIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadServiceIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	serviceIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("%w: loadServiceIDs - scan service_id: %v", ErrScanRow, err)
		}
		serviceIDs = append(serviceIDs, id)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadServiceIDs - rows error: %v", ErrScanRow, err)
	}

	appt.ServiceIDs = serviceIDs
	return nil
}

// applyResourceFilter дополняет запрос правилом ресурса:
// конкретный аппарат либо корзина "без аппарата"
func applyResourceFilter(b squirrel.SelectBuilder, resource domain.ResourceSelector) squirrel.SelectBuilder {
	if deviceID := resource.DeviceID(); deviceID != nil {
		return b.Where(squirrel.Eq{"device_id": *deviceID})
	}
	return b.Where(squirrel.Eq{"device_id": nil})
}

func occupyingStatusStrings() []string {
	statuses := make([]string, len(domain.OccupyingStatuses))
	for i, s := range domain.OccupyingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DeviceID,
		&appt.TrackingCode,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Status,
		&appt.PointsDiscountAmount,
		&appt.PointsUsed,
		&appt.DiscountCodeID,
		&appt.CodeDiscountAmount,
		&appt.TotalPrice,
		&appt.IsRated,
		&appt.PointsAwarded,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time
	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appts := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appts = append(appts, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appts, nil
}
