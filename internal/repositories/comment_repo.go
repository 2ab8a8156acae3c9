package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/inkwell-labs/bookstore-api/internal/database"
	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/jackc/pgx/v5"
)

// CommentRepository persists reviews and keeps the denormalized rating
// totals on books in step. Every mutation re-aggregates inside the same
// transaction so the totals never drift from the comment rows.
type CommentRepository struct {
	db *database.DB
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, rating, content, account_id, book_id, comment_date`

func scanCommentRow(scanner rowScanner) (*models.Comment, error) {
	var comment models.Comment

	err := scanner.Scan(
		&comment.ID, &comment.Rating, &comment.Content,
		&comment.AccountID, &comment.BookID, &comment.CommentDate,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &comment, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	return scanCommentRow(r.db.Pool.QueryRow(ctx, query, id))
}

func (r *CommentRepository) GetByAccountAndBook(ctx context.Context, accountID, bookID int64) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE account_id = $1 AND book_id = $2`

	return scanCommentRow(r.db.Pool.QueryRow(ctx, query, accountID, bookID))
}

func (r *CommentRepository) ListByBook(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE book_id = $1 ORDER BY comment_date DESC`

	rows, err := r.db.Pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return comments, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.CommentDate = time.Now()

	var created *models.Comment
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO comments (rating, content, account_id, book_id, comment_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + commentColumns

		var err error
		created, err = scanCommentRow(tx.QueryRow(ctx, query,
			comment.Rating, comment.Content, comment.AccountID, comment.BookID, comment.CommentDate,
		))
		if err != nil {
			return err
		}

		return refreshBookRatings(ctx, tx, comment.BookID)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *CommentRepository) Update(ctx context.Context, id int64, rating int, content *string) (*models.Comment, error) {
	var updated *models.Comment
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			UPDATE comments SET rating = $1, content = $2
			WHERE id = $3
			RETURNING ` + commentColumns

		var err error
		updated, err = scanCommentRow(tx.QueryRow(ctx, query, rating, content, id))
		if err != nil {
			return err
		}

		return refreshBookRatings(ctx, tx, updated.BookID)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var bookID int64
		err := tx.QueryRow(ctx, `DELETE FROM comments WHERE id = $1 RETURNING book_id`, id).Scan(&bookID)
		if err != nil {
			return database.MapPostgresError(err)
		}

		return refreshBookRatings(ctx, tx, bookID)
	})
}

// refreshBookRatings recomputes the aggregate rating columns from the
// surviving comment rows.
func refreshBookRatings(ctx context.Context, tx pgx.Tx, bookID int64) error {
	query := `
		UPDATE books SET
			total_rating_value = (SELECT COALESCE(SUM(rating), 0) FROM comments WHERE book_id = $1),
			total_rating_count = (SELECT COUNT(*) FROM comments WHERE book_id = $1)
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, bookID); err != nil {
		return fmt.Errorf("failed to refresh book ratings: %w", err)
	}
	return nil
}
