package budget

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type BudgetRepo interface {
	Create(ctx context.Context, userId int, budget Budget) (Budget, error)
	Get(ctx context.Context, userId int, id int) (Budget, error)
	GetAll(ctx context.Context, userId int) ([]Budget, error)
	Update(ctx context.Context, userId int, budget Budget) (Budget, error)
	Delete(ctx context.Context, userId int, id int) error
}

type BudgetRepoImpl struct {
	db *pgxpool.Pool
}

func NewBudgetRepo(db *pgxpool.Pool) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

const budgetColumns = `id, category_id, amount, currency, period, start_date, end_date, created_at`

func (r *BudgetRepoImpl) Create(ctx context.Context, userId int, budget Budget) (Budget, error) {
	query := `INSERT INTO budgets (user_id, category_id, amount, currency, period, start_date, end_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		userId,
		budget.CategoryId,
		budget.Amount,
		budget.Currency,
		budget.Period,
		nullableTime(budget.StartDate),
		nullableTime(budget.EndDate),
	).Scan(&budget.Id, &budget.CreatedAt)
	if isUniqueViolation(err) {
		return Budget{}, ErrBudgetExists
	}
	if err != nil {
		log.Errorf("failed to create budget: %v", err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) Get(ctx context.Context, userId int, id int) (Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 AND id = $2`
	budget, err := scanBudget(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	} else if err != nil {
		log.Errorf("failed to get budget: %v", err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) GetAll(ctx context.Context, userId int) ([]Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get budgets: %v", err)
		return nil, err
	}
	defer rows.Close()

	budgets := make([]Budget, 0)
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			log.Errorf("failed to scan budget: %v", err)
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func (r *BudgetRepoImpl) Update(ctx context.Context, userId int, budget Budget) (Budget, error) {
	query := `UPDATE budgets
			  SET category_id = $3, amount = $4, currency = $5, period = $6, start_date = $7, end_date = $8
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + budgetColumns
	updated, err := scanBudget(r.db.QueryRow(ctx, query,
		userId,
		budget.Id,
		budget.CategoryId,
		budget.Amount,
		budget.Currency,
		budget.Period,
		nullableTime(budget.StartDate),
		nullableTime(budget.EndDate),
	))
	if isUniqueViolation(err) {
		return Budget{}, ErrBudgetExists
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	} else if err != nil {
		log.Errorf("failed to update budget: %v", err)
		return Budget{}, err
	}
	return updated, nil
}

func (r *BudgetRepoImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM budgets WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete budget: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row pgx.Row) (Budget, error) {
	var budget Budget
	var startDate, endDate *time.Time
	err := row.Scan(
		&budget.Id,
		&budget.CategoryId,
		&budget.Amount,
		&budget.Currency,
		&budget.Period,
		&startDate,
		&endDate,
		&budget.CreatedAt,
	)
	if err != nil {
		return Budget{}, err
	}
	if startDate != nil {
		budget.StartDate = *startDate
	}
	if endDate != nil {
		budget.EndDate = *endDate
	}
	return budget, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// isUniqueViolation matches the Postgres unique_violation error raised by the
// one-budget-per-category-and-period constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
