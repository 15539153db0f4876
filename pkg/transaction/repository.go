package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
	CreateMany(ctx context.Context, userId int, transactions []Transaction) error
	Get(ctx context.Context, userId int, id int) (Transaction, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error)
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
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
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

const transactionColumns = `id, account_id, transfer_account_id, category_id, type, status, amount,
		currency, date, description, merchant, notes, recurring_id, import_batch_id, created_at`

const insertTransactionQuery = `INSERT INTO transactions
		(user_id, account_id, transfer_account_id, category_id, type, status, amount,
		 currency, date, description, merchant, notes, recurring_id, import_batch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (r *repositoryImpl) Create(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	query := insertTransactionQuery + ` RETURNING id, created_at`
	err := r.getQueryer().QueryRow(ctx, query, insertArgs(userId, transaction)...).
		Scan(&transaction.Id, &transaction.CreatedAt)
	if err != nil {
		log.Errorf("failed to create transaction: %v", err)
		return Transaction{}, err
	}
	return transaction, nil
}

// CreateMany inserts all transactions in a single round trip. Used by the CSV
// importer; the caller wraps it in WithTransaction so an import is all-or-nothing.
func (r *repositoryImpl) CreateMany(ctx context.Context, userId int, transactions []Transaction) error {
	batch := &pgx.Batch{}
	for _, transaction := range transactions {
		batch.Queue(insertTransactionQuery, insertArgs(userId, transaction)...)
	}
	results := r.getQueryer().SendBatch(ctx, batch)
	defer results.Close()
	for range transactions {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func insertArgs(userId int, t Transaction) []interface{} {
	return []interface{}{
		userId,
		t.AccountId,
		nullableInt(t.TransferAccountId),
		nullableInt(t.CategoryId),
		t.Type,
		t.Status,
		t.Amount,
		t.Currency,
		t.Date,
		t.Description,
		t.Merchant,
		t.Notes,
		nullableInt(t.RecurringId),
		nullableString(t.ImportBatchId),
	}
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND id = $2`
	transaction, err := scanTransaction(r.getQueryer().QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		log.Errorf("failed to get transaction: %v", err)
		return Transaction{}, err
	}
	return transaction, nil
}

func (r *repositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []interface{}{userId}

	if filter.AccountId != 0 {
		args = append(args, filter.AccountId)
		// transfers into the account are stored on the sending side
		query += fmt.Sprintf(` AND (account_id = $%d OR transfer_account_id = $%d)`, len(args), len(args))
	}
	if filter.CategoryId != 0 {
		args = append(args, filter.CategoryId)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND (description ILIKE $%d OR merchant ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY date DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to list transactions: %v", err)
		return nil, err
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			log.Errorf("failed to scan transaction: %v", err)
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	// recurring_id and import_batch_id record provenance and never change
	query := `UPDATE transactions
			  SET account_id = $3, transfer_account_id = $4, category_id = $5, type = $6, status = $7,
				  amount = $8, currency = $9, date = $10, description = $11, merchant = $12, notes = $13
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + transactionColumns
	updated, err := scanTransaction(r.getQueryer().QueryRow(ctx, query,
		userId,
		transaction.Id,
		transaction.AccountId,
		nullableInt(transaction.TransferAccountId),
		nullableInt(transaction.CategoryId),
		transaction.Type,
		transaction.Status,
		transaction.Amount,
		transaction.Currency,
		transaction.Date,
		transaction.Description,
		transaction.Merchant,
		transaction.Notes,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		log.Errorf("failed to update transaction: %v", err)
		return Transaction{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM transactions WHERE user_id = $1 AND id = $2`
	tag, err := r.getQueryer().Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete transaction: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var transferAccountId, categoryId, recurringId *int
	var importBatchId *string
	err := row.Scan(
		&t.Id,
		&t.AccountId,
		&transferAccountId,
		&categoryId,
		&t.Type,
		&t.Status,
		&t.Amount,
		&t.Currency,
		&t.Date,
		&t.Description,
		&t.Merchant,
		&t.Notes,
		&recurringId,
		&importBatchId,
		&t.CreatedAt,
	)
	if err != nil {
		return Transaction{}, err
	}
	if transferAccountId != nil {
		t.TransferAccountId = *transferAccountId
	}
	if categoryId != nil {
		t.CategoryId = *categoryId
	}
	if recurringId != nil {
		t.RecurringId = *recurringId
	}
	if importBatchId != nil {
		t.ImportBatchId = *importBatchId
	}
	return t, nil
}

func nullableInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
