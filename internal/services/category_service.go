package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/inkwell-labs/bookstore-api/internal/models"
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryService handles category taxonomy business logic
type CategoryService struct {
	repo   CategoryRepository
	logger *slog.Logger
}

func NewCategoryService(repo CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return categories, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get category", slog.Int64("category_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, models.ErrBadRequest
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create category", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("category created", slog.Int64("category_id", created.ID), slog.String("name", created.Name))
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, models.ErrBadRequest
	}

	updated, err := s.repo.Update(ctx, id, category)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update category", slog.Int64("category_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// Delete refuses to remove a category that still has books; the FK
// restriction surfaces as a conflict.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		if errors.Is(err, models.ErrBadRequest) {
			return models.ErrConflict
		}
		s.logger.Error("failed to delete category", slog.Int64("category_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("category deleted", slog.Int64("category_id", id))
	return nil
}
