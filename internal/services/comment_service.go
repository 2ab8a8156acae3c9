package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkwell-labs/bookstore-api/internal/models"
)

// CommentStore defines the interface for review data access
type CommentStore interface {
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByAccountAndBook(ctx context.Context, accountID, bookID int64) (*models.Comment, error)
	ListByBook(ctx context.Context, bookID int64) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Update(ctx context.Context, id int64, rating int, content *string) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// BookGetter is the slice of the catalog the comment service needs to
// check that a review targets a real book.
type BookGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
}

// CommentService handles review business logic: one review per account
// per book, ratings bounded to 1-5, and owner-only mutation.
type CommentService struct {
	repo   CommentStore
	books  BookGetter
	logger *slog.Logger
}

func NewCommentService(repo CommentStore, books BookGetter, logger *slog.Logger) *CommentService {
	return &CommentService{repo: repo, books: books, logger: logger}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func (s *CommentService) ListByBook(ctx context.Context, bookID int64) ([]*models.Comment, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrInternalServer
	}

	comments, err := s.repo.ListByBook(ctx, bookID)
	if err != nil {
		s.logger.Error("failed to list comments", slog.Int64("book_id", bookID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return comments, nil
}

// Create adds a review for a book. A second review from the same account
// for the same book is rejected as a conflict.
func (s *CommentService) Create(ctx context.Context, accountID, bookID int64, rating int, content *string) (*models.Comment, error) {
	if !validRating(rating) {
		return nil, models.ErrBadRequest
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrInternalServer
	}

	comment := &models.Comment{
		Rating:    rating,
		Content:   content,
		AccountID: accountID,
		BookID:    bookID,
	}

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create comment",
			slog.Int64("account_id", accountID),
			slog.Int64("book_id", bookID),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("comment created",
		slog.Int64("comment_id", created.ID),
		slog.Int64("book_id", bookID))
	return created, nil
}

// Update edits an existing review. Only the review's author may edit it.
func (s *CommentService) Update(ctx context.Context, accountID, commentID int64, rating int, content *string) (*models.Comment, error) {
	if !validRating(rating) {
		return nil, models.ErrBadRequest
	}

	existing, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get comment", slog.Int64("comment_id", commentID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if existing.AccountID != accountID {
		return nil, models.ErrForbidden
	}

	updated, err := s.repo.Update(ctx, commentID, rating, content)
	if err != nil {
		s.logger.Error("failed to update comment", slog.Int64("comment_id", commentID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// Delete removes a review. The author may delete their own review; an
// admin may delete any review.
func (s *CommentService) Delete(ctx context.Context, account *models.Account, commentID int64) error {
	existing, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get comment", slog.Int64("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if existing.AccountID != account.ID && !account.IsAdmin {
		return models.ErrForbidden
	}

	if err := s.repo.Delete(ctx, commentID); err != nil {
		s.logger.Error("failed to delete comment", slog.Int64("comment_id", commentID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("comment deleted",
		slog.Int64("comment_id", commentID),
		slog.Int64("account_id", account.ID))
	return nil
}
