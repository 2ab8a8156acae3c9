package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/repositories"
)

// BookRepository defines the interface for book data access
type BookRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter repositories.BookFilter, limit, offset int) ([]*models.Book, int, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookService handles catalog business logic
type BookService struct {
	repo   BookRepository
	logger *slog.Logger
}

func NewBookService(repo BookRepository, logger *slog.Logger) *BookService {
	return &BookService{repo: repo, logger: logger}
}

// BookPage is one page of catalog results.
type BookPage struct {
	Books       []*models.Book
	TotalItems  int
	TotalPages  int
	CurrentPage int
	Limit       int
}

// HasNext reports whether a later page exists.
func (p *BookPage) HasNext() bool { return p.CurrentPage < p.TotalPages }

// HasPrevious reports whether an earlier page exists.
func (p *BookPage) HasPrevious() bool { return p.CurrentPage > 1 }

// List returns one page of books. Out-of-range pages clamp to the
// nearest valid page rather than erroring, and an empty result still
// counts as one page.
func (s *BookService) List(ctx context.Context, categoryName, search string, page, limit int) (*BookPage, error) {
	if page < 1 || limit < 1 {
		return nil, models.ErrBadRequest
	}

	filter := repositories.BookFilter{
		CategoryName: strings.TrimSpace(categoryName),
		Search:       strings.TrimSpace(search),
	}

	books, total, err := s.repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("failed to list books", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	if totalPages < 1 {
		totalPages = 1
	}

	// Out-of-range pages clamp to the last page instead of erroring.
	if page > totalPages {
		page = totalPages
		books, _, err = s.repo.List(ctx, filter, limit, (page-1)*limit)
		if err != nil {
			s.logger.Error("failed to list books", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	return &BookPage{
		Books:       books,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}, nil
}

func (s *BookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get book", slog.Int64("book_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return book, nil
}

func (s *BookService) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if strings.TrimSpace(book.Title) == "" || strings.TrimSpace(book.AuthorName) == "" {
		return nil, models.ErrBadRequest
	}
	if book.UnitPrice < 0 {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			// Unknown category FK
			return nil, models.ErrBadRequest
		}
		s.logger.Error("failed to create book", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("book created", slog.Int64("book_id", created.ID))
	return created, nil
}

func (s *BookService) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	if strings.TrimSpace(book.Title) == "" || strings.TrimSpace(book.AuthorName) == "" {
		return nil, models.ErrBadRequest
	}
	if book.UnitPrice < 0 {
		return nil, models.ErrBadRequest
	}

	updated, err := s.repo.Update(ctx, id, book)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrBadRequest) {
			return nil, models.ErrBadRequest
		}
		s.logger.Error("failed to update book", slog.Int64("book_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("book updated", slog.Int64("book_id", id))
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete book", slog.Int64("book_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("book deleted", slog.Int64("book_id", id))
	return nil
}
