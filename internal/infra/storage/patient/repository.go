package patient

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/psqlbuilder"
)

// Repository репозиторий пациентов
// Аккаунты ведет внешняя система; здесь чтение профиля и движение
// бонусных баллов внутри транзакций бронирования
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория пациентов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает профиль пациента
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "gender", "points", "is_staff").
		From("patients").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.Patient
	var gender sql.NullString
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &gender, &p.Points, &p.IsStaff)
	if err == sql.ErrNoRows {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan patient: %v", ErrScanRow, err)
	}

	if gender.Valid {
		g := domain.Gender(gender.String)
		p.Gender = &g
	}

	return &p, nil
}

// DeductPoints списывает баллы с баланса пациента
// Условие points >= ? в WHERE защищает от ухода баланса в минус при
// конкурентных списаниях; вызывается только внутри транзакции бронирования
func (r *Repository) DeductPoints(ctx context.Context, patientID int64, points int) error {
	if points <= 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("patients").
		Set("points", squirrel.Expr("points - ?", points)).
		Where(squirrel.Eq{"id": patientID}).
		Where(squirrel.GtOrEq{"points": points}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeductPoints - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeductPoints - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeductPoints - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrInsufficientPoints
	}

	return nil
}

// AwardPoints начисляет баллы за выполненный визит
func (r *Repository) AwardPoints(ctx context.Context, patientID int64, points int) error {
	if points <= 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("patients").
		Set("points", squirrel.Expr("points + ?", points)).
		Where(squirrel.Eq{"id": patientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AwardPoints - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AwardPoints - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AwardPoints - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPatientNotFound
	}

	return nil
}
