package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error)
	Get(ctx context.Context, userId int, id int) (RecurringTransaction, error)
	GetAll(ctx context.Context, userId int) ([]RecurringTransaction, error)
	Update(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error)
	SetActive(ctx context.Context, userId int, id int, active bool) error
	UpdateNextDate(ctx context.Context, userId int, id int, nextDate time.Time) error
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const recurringColumns = `id, description, merchant, amount, currency, account_id,
		category_id, kind, frequency, next_date, active, created_at`

func (r *repositoryImpl) Create(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error) {
	query := `INSERT INTO recurring_transactions (user_id, description, merchant, amount, currency,
				account_id, category_id, kind, frequency, next_date, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		userId,
		recurring.Description,
		recurring.Merchant,
		recurring.Amount,
		recurring.Currency,
		recurring.AccountId,
		nullableInt(recurring.CategoryId),
		recurring.Kind,
		recurring.Frequency,
		recurring.NextDate,
		recurring.Active,
	).Scan(&recurring.Id, &recurring.CreatedAt)
	if err != nil {
		log.Errorf("failed to create recurring transaction: %v", err)
		return RecurringTransaction{}, err
	}
	return recurring, nil
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions WHERE user_id = $1 AND id = $2`
	recurring, err := scanRecurring(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return RecurringTransaction{}, ErrRecurringNotFound
	} else if err != nil {
		log.Errorf("failed to get recurring transaction: %v", err)
		return RecurringTransaction{}, err
	}
	return recurring, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, userId int) ([]RecurringTransaction, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions
			  WHERE user_id = $1 ORDER BY next_date, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get recurring transactions: %v", err)
		return nil, err
	}
	defer rows.Close()

	recurrings := make([]RecurringTransaction, 0)
	for rows.Next() {
		recurring, err := scanRecurring(rows)
		if err != nil {
			log.Errorf("failed to scan recurring transaction: %v", err)
			return nil, err
		}
		recurrings = append(recurrings, recurring)
	}
	return recurrings, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, recurring RecurringTransaction) (RecurringTransaction, error) {
	query := `UPDATE recurring_transactions
			  SET description = $3, merchant = $4, amount = $5, currency = $6, account_id = $7,
			      category_id = $8, kind = $9, frequency = $10, next_date = $11, active = $12
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + recurringColumns
	updated, err := scanRecurring(r.db.QueryRow(ctx, query,
		userId,
		recurring.Id,
		recurring.Description,
		recurring.Merchant,
		recurring.Amount,
		recurring.Currency,
		recurring.AccountId,
		nullableInt(recurring.CategoryId),
		recurring.Kind,
		recurring.Frequency,
		recurring.NextDate,
		recurring.Active,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return RecurringTransaction{}, ErrRecurringNotFound
	} else if err != nil {
		log.Errorf("failed to update recurring transaction: %v", err)
		return RecurringTransaction{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) SetActive(ctx context.Context, userId int, id int, active bool) error {
	query := `UPDATE recurring_transactions SET active = $3 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, active)
	if err != nil {
		log.Errorf("failed to update recurring transaction active flag: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

func (r *repositoryImpl) UpdateNextDate(ctx context.Context, userId int, id int, nextDate time.Time) error {
	query := `UPDATE recurring_transactions SET next_date = $3 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, nextDate)
	if err != nil {
		log.Errorf("failed to advance recurring transaction: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM recurring_transactions WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete recurring transaction: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecurringNotFound
	}
	return nil
}

func scanRecurring(row pgx.Row) (RecurringTransaction, error) {
	var recurring RecurringTransaction
	var categoryId *int
	err := row.Scan(
		&recurring.Id,
		&recurring.Description,
		&recurring.Merchant,
		&recurring.Amount,
		&recurring.Currency,
		&recurring.AccountId,
		&categoryId,
		&recurring.Kind,
		&recurring.Frequency,
		&recurring.NextDate,
		&recurring.Active,
		&recurring.CreatedAt,
	)
	if err != nil {
		return RecurringTransaction{}, err
	}
	if categoryId != nil {
		recurring.CategoryId = *categoryId
	}
	return recurring, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
