package payment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, payment Payment) (Payment, error)
	List(ctx context.Context, userId int, filter Filter) ([]Payment, error)
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const paymentColumns = `id, source_type, source_id, amount, currency, paid_at, note`

func (r *repositoryImpl) Create(ctx context.Context, userId int, payment Payment) (Payment, error) {
	query := `INSERT INTO payments (user_id, source_type, source_id, amount, currency, paid_at, note)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	err := r.db.QueryRow(ctx, query,
		userId,
		payment.SourceType,
		payment.SourceId,
		payment.Amount,
		payment.Currency,
		payment.PaidAt,
		payment.Note,
	).Scan(&payment.Id)
	if err != nil {
		log.Errorf("failed to create payment: %v", err)
		return Payment{}, err
	}
	return payment, nil
}

func (r *repositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1`
	args := []interface{}{userId}

	if filter.SourceType != "" {
		args = append(args, filter.SourceType)
		query += fmt.Sprintf(` AND source_type = $%d`, len(args))
	}
	if filter.SourceId != 0 {
		args = append(args, filter.SourceId)
		query += fmt.Sprintf(` AND source_id = $%d`, len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(` AND paid_at >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(` AND paid_at <= $%d`, len(args))
	}
	query += ` ORDER BY paid_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to list payments: %v", err)
		return nil, err
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			log.Errorf("failed to scan payment: %v", err)
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM payments WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete payment: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var payment Payment
	err := row.Scan(
		&payment.Id,
		&payment.SourceType,
		&payment.SourceId,
		&payment.Amount,
		&payment.Currency,
		&payment.PaidAt,
		&payment.Note,
	)
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}
