package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(db *database.DB) *BookRepository {
	return &BookRepository{pool: db.Pool}
}

// BookFilter narrows List results. Zero values mean no filtering.
type BookFilter struct {
	// CategoryName matches the category by case-insensitive equality.
	CategoryName string
	// Search matches title or author name, case-insensitive substring.
	Search string
}

const bookColumns = `id, title, description, author_name, publisher_name, published_date, unit_price, photo_path, total_rating_value, total_rating_count, category_id, created_at, updated_at`

func scanBookRow(scanner rowScanner) (*models.Book, error) {
	var book models.Book

	err := scanner.Scan(
		&book.ID, &book.Title, &book.Description, &book.AuthorName,
		&book.PublisherName, &book.PublishedDate, &book.UnitPrice, &book.PhotoPath,
		&book.TotalRatingValue, &book.TotalRatingCount, &book.CategoryID,
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &book, nil
}

func scanBookRows(rows pgx.Rows) ([]*models.Book, error) {
	defer rows.Close()

	books := make([]*models.Book, 0)

	for rows.Next() {
		book, err := scanBookRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return books, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	return scanBookRow(r.pool.QueryRow(ctx, query, id))
}

// List returns a page of books newest-first along with the total count of
// rows matching the filter.
func (r *BookRepository) List(ctx context.Context, filter BookFilter, limit, offset int) ([]*models.Book, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.CategoryName != "" {
		args = append(args, filter.CategoryName)
		where += fmt.Sprintf(` AND category_id IN (SELECT id FROM categories WHERE LOWER(name) = LOWER($%d))`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (title ILIKE $%d OR author_name ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT `+bookColumns+` FROM books`+where+` ORDER BY created_at DESC, updated_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query books: %w", err)
	}

	books, err := scanBookRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (r *BookRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	query := `
		INSERT INTO books (title, description, author_name, publisher_name, published_date, unit_price, photo_path, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + bookColumns

	return scanBookRow(r.pool.QueryRow(ctx, query,
		book.Title, book.Description, book.AuthorName, book.PublisherName,
		book.PublishedDate, book.UnitPrice, book.PhotoPath, book.CategoryID,
		book.CreatedAt, book.UpdatedAt,
	))
}

func (r *BookRepository) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	book.UpdatedAt = time.Now()

	query := `
		UPDATE books SET title = $1, description = $2, author_name = $3, publisher_name = $4, published_date = $5, unit_price = $6, photo_path = $7, category_id = $8, updated_at = $9
		WHERE id = $10
		RETURNING ` + bookColumns

	return scanBookRow(r.pool.QueryRow(ctx, query,
		book.Title, book.Description, book.AuthorName, book.PublisherName,
		book.PublishedDate, book.UnitPrice, book.PhotoPath, book.CategoryID,
		book.UpdatedAt, id,
	))
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
