package repositories

import (
	"context"
	"fmt"

	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{pool: db.Pool}
}

func scanCategoryRow(scanner rowScanner) (*models.Category, error) {
	var category models.Category
	if err := scanner.Scan(&category.ID, &category.Name, &category.SortOrder); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &category, nil
}

// Create inserts a category. A zero SortOrder is auto-assigned as the
// current maximum plus ten, leaving room for manual reordering.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, sort_order)
		VALUES ($1, CASE WHEN $2 = 0 THEN (SELECT COALESCE(MAX(sort_order), 0) + 10 FROM categories) ELSE $2 END)
		RETURNING id, name, sort_order
	`

	return scanCategoryRow(r.pool.QueryRow(ctx, query, category.Name, category.SortOrder))
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT id, name, sort_order FROM categories WHERE id = $1`

	return scanCategoryRow(r.pool.QueryRow(ctx, query, id))
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT id, name, sort_order FROM categories WHERE LOWER(name) = LOWER($1)`

	return scanCategoryRow(r.pool.QueryRow(ctx, query, name))
}

func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT id, name, sort_order FROM categories ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		category, err := scanCategoryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories SET name = $1, sort_order = $2
		WHERE id = $3
		RETURNING id, name, sort_order
	`

	return scanCategoryRow(r.pool.QueryRow(ctx, query, category.Name, category.SortOrder, id))
}

// Delete fails with a conflict while books still reference the category;
// the FK is RESTRICT to mirror protected deletes.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
