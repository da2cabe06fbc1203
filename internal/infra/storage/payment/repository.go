package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/simaclinic/booking-service/internal/domain"
	"github.com/simaclinic/booking-service/pkg/dbmetrics"
	"github.com/simaclinic/booking-service/pkg/psqlbuilder"
)

var transactionColumns = []string{
	"id",
	"appointment_id",
	"amount",
	"authority",
	"ref_id",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий платежных транзакций
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpsertForAppointment создает платежную транзакцию для записи или
// сбрасывает существующую в PENDING при повторной попытке оплаты
// (authority предыдущей попытки затирается)
func (r *Repository) UpsertForAppointment(ctx context.Context, appointmentID, amount int64) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payment_transactions").
		Columns("appointment_id", "amount", "status").
		Values(appointmentID, amount, domain.PaymentPending).
		Suffix(`ON CONFLICT (appointment_id) DO UPDATE
			SET amount = EXCLUDED.amount,
			    authority = NULL,
			    ref_id = NULL,
			    status = EXCLUDED.status,
			    updated_at = NOW()
			RETURNING ` + strings.Join(transactionColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertForAppointment - build insert query: %v", ErrBuildQuery, err)
	}

	tx, err := scanTransaction(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertForAppointment - scan transaction: %v", ErrScanRow, err)
	}

	return tx, nil
}

// SetAuthority сохраняет выданный шлюзом authority-токен
func (r *Repository) SetAuthority(ctx context.Context, id int64, authority string) error {
	return r.update(ctx, id, map[string]interface{}{
		"authority": authority,
	})
}

// SetStatus обновляет статус транзакции; refID заполняется на успехе
func (r *Repository) SetStatus(ctx context.Context, id int64, status domain.PaymentStatus, refID *string) error {
	values := map[string]interface{}{
		"status": status,
	}
	if refID != nil {
		values["ref_id"] = *refID
	}
	return r.update(ctx, id, values)
}

// GetByAuthority находит транзакцию по authority (callback от шлюза)
func (r *Repository) GetByAuthority(ctx context.Context, authority string) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(squirrel.Eq{"authority": authority}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAuthority - build select query: %v", ErrBuildQuery, err)
	}

	tx, err := scanTransaction(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAuthority - scan transaction: %v", ErrScanRow, err)
	}

	return tx, nil
}

// GetByAppointmentID находит транзакцию записи
func (r *Repository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.PaymentTransaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(transactionColumns...).
		From("payment_transactions").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - build select query: %v", ErrBuildQuery, err)
	}

	tx, err := scanTransaction(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByAppointmentID - scan transaction: %v", ErrScanRow, err)
	}

	return tx, nil
}

func (r *Repository) update(ctx context.Context, id int64, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("payment_transactions").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})
	for col, val := range values {
		updateBuilder = updateBuilder.Set(col, val)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&tx.ID,
		&tx.AppointmentID,
		&tx.Amount,
		&tx.Authority,
		&tx.RefID,
		&tx.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time
	return &tx, nil
}

