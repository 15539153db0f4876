package liability

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, liability Liability) (Liability, error)
	Get(ctx context.Context, userId int, id int) (Liability, error)
	GetAll(ctx context.Context, userId int, includeArchived bool) ([]Liability, error)
	Update(ctx context.Context, userId int, liability Liability) (Liability, error)
	UpdateBalance(ctx context.Context, userId int, id int, balance decimal.Decimal, status Status) error
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const liabilityColumns = `id, name, type, principal, balance, currency, interest_rate,
		minimum_payment, due_day, status, created_at`

func (r *repositoryImpl) Create(ctx context.Context, userId int, liability Liability) (Liability, error) {
	query := `INSERT INTO liabilities (user_id, name, type, principal, balance, currency,
				interest_rate, minimum_payment, due_day, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		userId,
		liability.Name,
		liability.Type,
		liability.Principal,
		liability.Balance,
		liability.Currency,
		liability.InterestRate,
		liability.MinimumPayment,
		liability.DueDay,
		liability.Status,
	).Scan(&liability.Id, &liability.CreatedAt)
	if err != nil {
		log.Errorf("failed to create liability: %v", err)
		return Liability{}, err
	}
	return liability, nil
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM liabilities WHERE user_id = $1 AND id = $2`
	liability, err := scanLiability(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Liability{}, ErrLiabilityNotFound
	} else if err != nil {
		log.Errorf("failed to get liability: %v", err)
		return Liability{}, err
	}
	return liability, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Liability, error) {
	query := `SELECT ` + liabilityColumns + ` FROM liabilities WHERE user_id = $1`
	if !includeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get liabilities: %v", err)
		return nil, err
	}
	defer rows.Close()

	liabilities := make([]Liability, 0)
	for rows.Next() {
		liability, err := scanLiability(rows)
		if err != nil {
			log.Errorf("failed to scan liability: %v", err)
			return nil, err
		}
		liabilities = append(liabilities, liability)
	}
	return liabilities, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, liability Liability) (Liability, error) {
	query := `UPDATE liabilities
			  SET name = $3, type = $4, principal = $5, balance = $6, currency = $7,
			      interest_rate = $8, minimum_payment = $9, due_day = $10, status = $11
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + liabilityColumns
	updated, err := scanLiability(r.db.QueryRow(ctx, query,
		userId,
		liability.Id,
		liability.Name,
		liability.Type,
		liability.Principal,
		liability.Balance,
		liability.Currency,
		liability.InterestRate,
		liability.MinimumPayment,
		liability.DueDay,
		liability.Status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Liability{}, ErrLiabilityNotFound
	} else if err != nil {
		log.Errorf("failed to update liability: %v", err)
		return Liability{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) UpdateBalance(ctx context.Context, userId int, id int, balance decimal.Decimal, status Status) error {
	query := `UPDATE liabilities SET balance = $3, status = $4 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, balance, status)
	if err != nil {
		log.Errorf("failed to update liability balance: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLiabilityNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM liabilities WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete liability: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLiabilityNotFound
	}
	return nil
}

func scanLiability(row pgx.Row) (Liability, error) {
	var liability Liability
	err := row.Scan(
		&liability.Id,
		&liability.Name,
		&liability.Type,
		&liability.Principal,
		&liability.Balance,
		&liability.Currency,
		&liability.InterestRate,
		&liability.MinimumPayment,
		&liability.DueDay,
		&liability.Status,
		&liability.CreatedAt,
	)
	if err != nil {
		return Liability{}, err
	}
	return liability, nil
}
