package bill

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type CycleRepository interface {
	Create(ctx context.Context, userId int, cycle BillCycle) (BillCycle, error)
	Get(ctx context.Context, userId int, id int) (BillCycle, error)
	GetOpenByAccount(ctx context.Context, userId int, accountId int) (BillCycle, error)
	ListByAccount(ctx context.Context, userId int, accountId int) ([]BillCycle, error)
	Close(ctx context.Context, userId int, id int, endDate time.Time, statement decimal.Decimal, minimumDue decimal.Decimal, dueDate time.Time) error
	SetStatus(ctx context.Context, userId int, id int, status CycleStatus) error
	Delete(ctx context.Context, userId int, id int) error
}

type cycleRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewCycleRepository(db *pgxpool.Pool) CycleRepository {
	return &cycleRepositoryImpl{db: db}
}

const cycleColumns = `id, account_id, start_date, end_date, statement_balance, minimum_due, due_date, status`

func (r *cycleRepositoryImpl) Create(ctx context.Context, userId int, cycle BillCycle) (BillCycle, error) {
	query := `INSERT INTO bill_cycles (user_id, account_id, start_date, end_date,
				statement_balance, minimum_due, due_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	err := r.db.QueryRow(ctx, query,
		userId,
		cycle.AccountId,
		cycle.StartDate,
		nullableTime(cycle.EndDate),
		cycle.StatementBalance,
		cycle.MinimumDue,
		nullableTime(cycle.DueDate),
		cycle.Status,
	).Scan(&cycle.Id)
	if err != nil {
		log.Errorf("failed to create billing cycle: %v", err)
		return BillCycle{}, err
	}
	return cycle, nil
}

func (r *cycleRepositoryImpl) Get(ctx context.Context, userId int, id int) (BillCycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM bill_cycles WHERE user_id = $1 AND id = $2`
	cycle, err := scanCycle(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return BillCycle{}, ErrCycleNotFound
	} else if err != nil {
		log.Errorf("failed to get billing cycle: %v", err)
		return BillCycle{}, err
	}
	return cycle, nil
}

func (r *cycleRepositoryImpl) GetOpenByAccount(ctx context.Context, userId int, accountId int) (BillCycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM bill_cycles
			  WHERE user_id = $1 AND account_id = $2 AND status = 'open'`
	cycle, err := scanCycle(r.db.QueryRow(ctx, query, userId, accountId))
	if errors.Is(err, pgx.ErrNoRows) {
		return BillCycle{}, ErrCycleNotFound
	} else if err != nil {
		log.Errorf("failed to get open billing cycle: %v", err)
		return BillCycle{}, err
	}
	return cycle, nil
}

func (r *cycleRepositoryImpl) ListByAccount(ctx context.Context, userId int, accountId int) ([]BillCycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM bill_cycles
			  WHERE user_id = $1 AND account_id = $2
			  ORDER BY start_date DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userId, accountId)
	if err != nil {
		log.Errorf("failed to list billing cycles: %v", err)
		return nil, err
	}
	defer rows.Close()

	cycles := make([]BillCycle, 0)
	for rows.Next() {
		cycle, err := scanCycle(rows)
		if err != nil {
			log.Errorf("failed to scan billing cycle: %v", err)
			return nil, err
		}
		cycles = append(cycles, cycle)
	}
	return cycles, rows.Err()
}

func (r *cycleRepositoryImpl) Close(ctx context.Context, userId int, id int, endDate time.Time, statement decimal.Decimal, minimumDue decimal.Decimal, dueDate time.Time) error {
	query := `UPDATE bill_cycles
			  SET end_date = $3, statement_balance = $4, minimum_due = $5, due_date = $6, status = 'closed'
			  WHERE user_id = $1 AND id = $2 AND status = 'open'`
	tag, err := r.db.Exec(ctx, query, userId, id, endDate, statement, minimumDue, nullableTime(dueDate))
	if err != nil {
		log.Errorf("failed to close billing cycle: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (r *cycleRepositoryImpl) SetStatus(ctx context.Context, userId int, id int, status CycleStatus) error {
	query := `UPDATE bill_cycles SET status = $3 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, status)
	if err != nil {
		log.Errorf("failed to update billing cycle status: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (r *cycleRepositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM bill_cycles WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete billing cycle: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func scanCycle(row pgx.Row) (BillCycle, error) {
	var cycle BillCycle
	var endDate, dueDate *time.Time
	err := row.Scan(
		&cycle.Id,
		&cycle.AccountId,
		&cycle.StartDate,
		&endDate,
		&cycle.StatementBalance,
		&cycle.MinimumDue,
		&dueDate,
		&cycle.Status,
	)
	if err != nil {
		return BillCycle{}, err
	}
	if endDate != nil {
		cycle.EndDate = *endDate
	}
	if dueDate != nil {
		cycle.DueDate = *dueDate
	}
	return cycle, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
