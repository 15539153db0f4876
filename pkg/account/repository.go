package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, userId int, account Account) (Account, error)
	Get(ctx context.Context, userId int, id int) (Account, error)
	GetAll(ctx context.Context, userId int, includeArchived bool) ([]Account, error)
	Update(ctx context.Context, userId int, account Account) (Account, error)
	UpdatePosition(ctx context.Context, userId int, id int, position int) error
	FindMaxPosition(ctx context.Context, userId int) (int, error)
	AdjustBalance(ctx context.Context, userId int, id int, delta decimal.Decimal) error
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *repositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &repositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *repositoryImpl) Create(ctx context.Context, userId int, account Account) (Account, error) {
	query := `INSERT INTO accounts (user_id, name, type, currency, balance, icon, color, position, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, created_at`
	err := r.getQueryer().QueryRow(ctx, query,
		userId,
		account.Name,
		account.Type,
		account.Currency,
		account.Balance,
		account.Icon,
		account.Color,
		account.Position,
		account.Status,
	).Scan(&account.Id, &account.CreatedAt)
	if err != nil {
		log.Errorf("failed to create account: %v", err)
		return Account{}, err
	}
	return account, nil
}

const accountColumns = `id, name, type, currency, balance, icon, color, position, status, created_at`

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND id = $2`
	account, err := scanAccount(r.getQueryer().QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	} else if err != nil {
		log.Errorf("failed to get account: %v", err)
		return Account{}, err
	}
	return account, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	if !includeArchived {
		query += ` AND status = 'active'`
	}
	query += ` ORDER BY position`

	rows, err := r.getQueryer().Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get accounts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, account Account) (Account, error) {
	// Currency and balance are deliberately not updatable here: currency is
	// fixed at creation, balance only moves with transactions.
	query := `UPDATE accounts SET name = $1, type = $2, icon = $3, color = $4, status = $5
			  WHERE user_id = $6 AND id = $7
			  RETURNING ` + accountColumns
	updated, err := scanAccount(r.getQueryer().QueryRow(ctx, query,
		account.Name, account.Type, account.Icon, account.Color, account.Status, userId, account.Id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	} else if err != nil {
		return Account{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) UpdatePosition(ctx context.Context, userId int, id int, position int) error {
	query := `UPDATE accounts SET position = $1 WHERE user_id = $2 AND id = $3`
	result, err := r.getQueryer().Exec(ctx, query, position, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repositoryImpl) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	query := `SELECT COALESCE(MAX(position), 0) FROM accounts WHERE user_id = $1`
	var max int
	if err := r.getQueryer().QueryRow(ctx, query, userId).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *repositoryImpl) AdjustBalance(ctx context.Context, userId int, id int, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1 WHERE user_id = $2 AND id = $3`
	result, err := r.getQueryer().Exec(ctx, query, delta, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM accounts WHERE user_id = $1 AND id = $2`
	result, err := r.getQueryer().Exec(ctx, query, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var account Account
	err := row.Scan(
		&account.Id,
		&account.Name,
		&account.Type,
		&account.Currency,
		&account.Balance,
		&account.Icon,
		&account.Color,
		&account.Position,
		&account.Status,
		&account.CreatedAt,
	)
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
