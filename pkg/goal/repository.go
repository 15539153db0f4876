package goal

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, goal Goal) (Goal, error)
	Get(ctx context.Context, userId int, id int) (Goal, error)
	GetAll(ctx context.Context, userId int, includeArchived bool) ([]Goal, error)
	Update(ctx context.Context, userId int, goal Goal) (Goal, error)
	UpdateProgress(ctx context.Context, userId int, id int, saved decimal.Decimal, status Status) error
	Delete(ctx context.Context, userId int, id int) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

const goalColumns = `id, name, target_amount, saved_amount, currency, target_date, icon, status, created_at`

func (r *repositoryImpl) Create(ctx context.Context, userId int, goal Goal) (Goal, error) {
	query := `INSERT INTO goals (user_id, name, target_amount, saved_amount, currency, target_date, icon, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		userId,
		goal.Name,
		goal.TargetAmount,
		goal.SavedAmount,
		goal.Currency,
		nullableTime(goal.TargetDate),
		goal.Icon,
		goal.Status,
	).Scan(&goal.Id, &goal.CreatedAt)
	if err != nil {
		log.Errorf("failed to create goal: %v", err)
		return Goal{}, err
	}
	return goal, nil
}

func (r *repositoryImpl) Get(ctx context.Context, userId int, id int) (Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 AND id = $2`
	goal, err := scanGoal(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	} else if err != nil {
		log.Errorf("failed to get goal: %v", err)
		return Goal{}, err
	}
	return goal, nil
}

func (r *repositoryImpl) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	if !includeArchived {
		query += ` AND status != 'archived'`
	}
	query += ` ORDER BY id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			log.Errorf("failed to scan goal: %v", err)
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *repositoryImpl) Update(ctx context.Context, userId int, goal Goal) (Goal, error) {
	query := `UPDATE goals
			  SET name = $3, target_amount = $4, saved_amount = $5, currency = $6,
			      target_date = $7, icon = $8, status = $9
			  WHERE user_id = $1 AND id = $2
			  RETURNING ` + goalColumns
	updated, err := scanGoal(r.db.QueryRow(ctx, query,
		userId,
		goal.Id,
		goal.Name,
		goal.TargetAmount,
		goal.SavedAmount,
		goal.Currency,
		nullableTime(goal.TargetDate),
		goal.Icon,
		goal.Status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	} else if err != nil {
		log.Errorf("failed to update goal: %v", err)
		return Goal{}, err
	}
	return updated, nil
}

func (r *repositoryImpl) UpdateProgress(ctx context.Context, userId int, id int, saved decimal.Decimal, status Status) error {
	query := `UPDATE goals SET saved_amount = $3, status = $4 WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id, saved, status)
	if err != nil {
		log.Errorf("failed to update goal progress: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM goals WHERE user_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		log.Errorf("failed to delete goal: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func scanGoal(row pgx.Row) (Goal, error) {
	var goal Goal
	var targetDate *time.Time
	err := row.Scan(
		&goal.Id,
		&goal.Name,
		&goal.TargetAmount,
		&goal.SavedAmount,
		&goal.Currency,
		&targetDate,
		&goal.Icon,
		&goal.Status,
		&goal.CreatedAt,
	)
	if err != nil {
		return Goal{}, err
	}
	if targetDate != nil {
		goal.TargetDate = *targetDate
	}
	return goal, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
