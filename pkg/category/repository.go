package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Create(ctx context.Context, userId int, category Category) (Category, error)
	CreateMany(ctx context.Context, userId int, categories []Category) error
	Get(ctx context.Context, userId int, id int) (Category, error)
	GetAll(ctx context.Context, userId int) ([]Category, error)
	Update(ctx context.Context, userId int, category Category) (Category, error)
	Delete(ctx context.Context, userId int, id int) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, category Category) (Category, error) {
	query := `INSERT INTO categories (user_id, name, icon, color, kind) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query, userId, category.Name, category.Icon, category.Color, category.Kind).
		Scan(&category.Id)
	if err != nil {
		log.Errorf("failed to create category: %v", err)
		return Category{}, err
	}
	return category, nil
}

func (r *RepositoryImpl) CreateMany(ctx context.Context, userId int, categories []Category) error {
	batch := &pgx.Batch{}
	query := `INSERT INTO categories (user_id, name, icon, color, kind) VALUES ($1, $2, $3, $4, $5)`
	for _, category := range categories {
		batch.Queue(query, userId, category.Name, category.Icon, category.Color, category.Kind)
	}
	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range categories {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Category, error) {
	query := `SELECT id, name, icon, color, kind FROM categories WHERE user_id = $1 AND id = $2`
	var category Category
	err := r.db.QueryRow(ctx, query, userId, id).
		Scan(&category.Id, &category.Name, &category.Icon, &category.Color, &category.Kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	} else if err != nil {
		log.Errorf("failed to get category: %v", err)
		return Category{}, err
	}
	return category, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]Category, error) {
	query := `SELECT id, name, icon, color, kind FROM categories WHERE user_id = $1 ORDER BY kind, name`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to get categories: %v", err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.Id, &category.Name, &category.Icon, &category.Color, &category.Kind); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, category Category) (Category, error) {
	query := `UPDATE categories SET name = $1, icon = $2, color = $3, kind = $4 WHERE user_id = $5 AND id = $6`
	result, err := r.db.Exec(ctx, query, category.Name, category.Icon, category.Color, category.Kind, userId, category.Id)
	if err != nil {
		return Category{}, err
	}
	if result.RowsAffected() == 0 {
		return Category{}, ErrCategoryNotFound
	}
	return category, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) error {
	query := `DELETE FROM categories WHERE user_id = $1 AND id = $2`
	result, err := r.db.Exec(ctx, query, userId, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
