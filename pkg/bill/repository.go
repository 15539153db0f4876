package bill

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, bill Bill) (Bill, error)
	Get(ctx context.Context, userId int, id int) (Bill, error)
	GetAll(ctx context.Context, userId int) ([]Bill, error)
	ListUpcoming(ctx context.Context, userId int, until time.Time) ([]Bill, error)
	Update(ctx context.Context, userId int, bill Bill) (Bill, error)
	MarkPaid(ctx context.Context, userId int, id int, status Status, dueDate time.Time) error
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const billColumns = `id, name, amount, currency, category_id, due_date, recurrence,
		auto_pay, status, linked_account_id, created_at`

func (r *repositoryImpl) Create(ctx context.Context, userId int, bill Bill) (Bill, error) {
	query := `INSERT INTO bills (user_id, name, amount, currency, category_id, due_date,
				recurrence, auto_pay, status, linked_account_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		userId,
		bill.Name,
		bill.Amount,
		bill.Currency,
		nullableInt(bill.CategoryId),
		bill.DueDate,
		bill.Recurrence,
		bill.AutoPay,
		bill.Status,
		nullableInt(bill.LinkedAccountId),
	).Scan(&bill.Id, &bill.CreatedAt)
	if err != nil {
		log.Errorf("failed to create bill: %v", err)
		return Bill{}, err
	}
	return bill, nil
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1 AND id = $2`
	bill, err := scanBill(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, ErrBillNotFound
	} else if err != nil {
		log.Errorf("failed to get bill: %v", err)
		return Bill{}, err
	}
	return bill, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, userId int) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE user_id = $1 ORDER BY due_date, id`
	return r.queryBills(ctx, query, userId)
}

// ListUpcoming returns unpaid bills due on or before until; overdue bills are
// naturally included since their due date already passed.
func (r *repositoryImpl) ListUpcoming(ctx context.Context, userId int, until time.Time) ([]Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills
			  WHERE user_id = $1 AND status = 'upcoming' AND due_date <= $2
			  ORDER BY due_date, id`
	return r.queryBills(ctx, query, userId, until)
}

func (r *repositoryImpl) queryBills(ctx context.Context, query string, args ...interface{}) ([]Bill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to list bills: %v", err)
		return nil, err
	}
	defer rows.Close()

	bills := make([]Bill, 0)
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			log.Errorf("failed to scan bill: %v", err)
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, bill Bill) (Bill, error) {
	query := `UPDATE bills
			  SET name = $3, amount = $4, currency = $5, category_id = $6, due_date = $7,
			      recurrence = $8, auto_pay = $9, status = $10, linked_account_id = $11
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + billColumns
	updated, err := scanBill(r.db.QueryRow(ctx, query,
		userId,
		bill.Id,
		bill.Name,
		bill.Amount,
		bill.Currency,
		nullableInt(bill.CategoryId),
		bill.DueDate,
		bill.Recurrence,
		bill.AutoPay,
		bill.Status,
		nullableInt(bill.LinkedAccountId),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Bill{}, ErrBillNotFound
	} else if err != nil {
		log.Errorf("failed to update bill: %v", err)
		return Bill{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) MarkPaid(ctx context.Context, userId int, id int, status Status, dueDate time.Time) error {
	query := `UPDATE bills SET status = $3, due_date = $4 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, status, dueDate)
	if err != nil {
		log.Errorf("failed to mark bill paid: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM bills WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete bill: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func scanBill(row pgx.Row) (Bill, error) {
	var bill Bill
	var categoryId, linkedAccountId *int
	err := row.Scan(
		&bill.Id,
		&bill.Name,
		&bill.Amount,
		&bill.Currency,
		&categoryId,
		&bill.DueDate,
		&bill.Recurrence,
		&bill.AutoPay,
		&bill.Status,
		&linkedAccountId,
		&bill.CreatedAt,
	)
	if err != nil {
		return Bill{}, err
	}
	if categoryId != nil {
		bill.CategoryId = *categoryId
	}
	if linkedAccountId != nil {
		bill.LinkedAccountId = *linkedAccountId
	}
	return bill, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
