package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/bookstore-api/internal/models"
)

func TestCategoryService_Create(t *testing.T) {
	t.Run("trims the name", func(t *testing.T) {
		repo := &MockCategoryRepository{
			CreateFunc: func(_ context.Context, category *models.Category) (*models.Category, error) {
				assert.Equal(t, "Fiction", category.Name)
				category.ID = 1
				category.SortOrder = 10
				return category, nil
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		created, err := svc.Create(context.Background(), &models.Category{Name: "  Fiction  "})

		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, 10, created.SortOrder)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		svc := NewCategoryService(&MockCategoryRepository{}, slog.Default())

		_, err := svc.Create(context.Background(), &models.Category{Name: "   "})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("passes through conflicts", func(t *testing.T) {
		repo := &MockCategoryRepository{
			CreateFunc: func(_ context.Context, _ *models.Category) (*models.Category, error) {
				return nil, models.ErrConflict
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		_, err := svc.Create(context.Background(), &models.Category{Name: "Fiction"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestCategoryService_Update(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo := &MockCategoryRepository{
			UpdateFunc: func(_ context.Context, _ int64, _ *models.Category) (*models.Category, error) {
				return nil, models.ErrNotFound
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		_, err := svc.Update(context.Background(), 99, &models.Category{Name: "Fiction"})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		svc := NewCategoryService(&MockCategoryRepository{}, slog.Default())

		_, err := svc.Update(context.Background(), 1, &models.Category{Name: ""})
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	t.Run("maps restricted delete to conflict", func(t *testing.T) {
		repo := &MockCategoryRepository{
			DeleteFunc: func(_ context.Context, _ int64) error {
				return models.ErrBadRequest
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		err := svc.Delete(context.Background(), 1)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &MockCategoryRepository{
			DeleteFunc: func(_ context.Context, _ int64) error {
				return models.ErrNotFound
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		err := svc.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("success", func(t *testing.T) {
		var deletedID int64
		repo := &MockCategoryRepository{
			DeleteFunc: func(_ context.Context, id int64) error {
				deletedID = id
				return nil
			},
		}

		svc := NewCategoryService(repo, slog.Default())
		require.NoError(t, svc.Delete(context.Background(), 7))
		assert.Equal(t, int64(7), deletedID)
	})
}

func TestCategoryService_List(t *testing.T) {
	repo := &MockCategoryRepository{
		ListFunc: func(_ context.Context) ([]*models.Category, error) {
			return []*models.Category{
				{ID: 1, Name: "Fiction", SortOrder: 10},
				{ID: 2, Name: "Science", SortOrder: 20},
			}, nil
		},
	}

	svc := NewCategoryService(repo, slog.Default())
	categories, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Fiction", categories[0].Name)
}
