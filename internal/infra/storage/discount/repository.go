package discount

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/psqlbuilder"
)

// Repository репозиторий кодов скидок
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория кодов скидок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByCode получает код скидки без учета регистра
func (r *Repository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"code",
		"discount_type",
		"value",
		"start_date",
		"end_date",
		"is_active",
		"patient_id",
		"is_one_time",
		"is_used",
	).
		From("discount_codes").
		Where(squirrel.Expr("LOWER(code) = LOWER(?)", code)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - build select query: %v", ErrBuildQuery, err)
	}

	var dc domain.DiscountCode
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&dc.ID,
		&dc.Code,
		&dc.Type,
		&dc.Value,
		&dc.StartDate,
		&dc.EndDate,
		&dc.IsActive,
		&dc.PatientID,
		&dc.IsOneTime,
		&dc.IsUsed,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCode - scan discount code: %v", ErrScanRow, err)
	}

	return &dc, nil
}

// MarkUsed помечает код использованным
// Вызывается только внутри транзакции создания записи, чтобы пометка
// и сама запись были атомарны
func (r *Repository) MarkUsed(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("discount_codes").
		Set("is_used", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkUsed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkUsed - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkUsed - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrCodeNotFound
	}

	return nil
}
