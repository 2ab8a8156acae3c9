package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/bookstore-api/internal/models"
)

type mockCategoryService struct {
	ListFunc    func(ctx context.Context) ([]*models.Category, error)
	GetByIDFunc func(ctx context.Context, id int64) (*models.Category, error)
	CreateFunc  func(ctx context.Context, category *models.Category) (*models.Category, error)
	UpdateFunc  func(ctx context.Context, id int64, category *models.Category) (*models.Category, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *mockCategoryService) List(ctx context.Context) ([]*models.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockCategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockCategoryService) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, category)
	}
	return nil, models.ErrInternalServer
}

func (m *mockCategoryService) Update(ctx context.Context, id int64, category *models.Category) (*models.Category, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, category)
	}
	return nil, models.ErrNotFound
}

func (m *mockCategoryService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return models.ErrNotFound
}

func newCategoryRouter(service CategoryServiceInterface) *chi.Mux {
	handler := NewCategoryHandler(service)
	router := chi.NewRouter()
	router.Get("/api/categories/", handler.List)
	router.Post("/api/categories/", handler.Create)
	router.Put("/api/categories/{id}", handler.Update)
	router.Delete("/api/categories/{id}", handler.Delete)
	return router
}

func TestCategoryListHandler(t *testing.T) {
	service := &mockCategoryService{
		ListFunc: func(_ context.Context) ([]*models.Category, error) {
			return []*models.Category{
				{ID: 1, Name: "Fiction", SortOrder: 10},
				{ID: 2, Name: "Science", SortOrder: 20},
			}, nil
		},
	}

	recorder, envelope := doRequest(t, newCategoryRouter(service), http.MethodGet, "/api/categories/", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, "Fiction", data[0]["name"])
	assert.Equal(t, float64(10), data[0]["sort_order"])
}

func TestCategoryCreateHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockCategoryService{
			CreateFunc: func(_ context.Context, category *models.Category) (*models.Category, error) {
				assert.Equal(t, "Poetry", category.Name)
				category.ID = 3
				category.SortOrder = 30
				return category, nil
			},
		}

		recorder, envelope := doRequest(t, newCategoryRouter(service), http.MethodPost, "/api/categories/",
			`{"name":"Poetry"}`)
		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "Category created.", envelope.Message)
		assert.Equal(t, float64(30), dataObject(t, envelope)["sort_order"])
	})

	t.Run("duplicate name", func(t *testing.T) {
		service := &mockCategoryService{
			CreateFunc: func(_ context.Context, _ *models.Category) (*models.Category, error) {
				return nil, models.ErrConflict
			},
		}

		recorder, envelope := doRequest(t, newCategoryRouter(service), http.MethodPost, "/api/categories/",
			`{"name":"Poetry"}`)
		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Equal(t, "A category with this name already exists.", envelope.Message)
	})

	t.Run("blank name", func(t *testing.T) {
		service := &mockCategoryService{
			CreateFunc: func(_ context.Context, _ *models.Category) (*models.Category, error) {
				return nil, models.ErrBadRequest
			},
		}

		recorder, envelope := doRequest(t, newCategoryRouter(service), http.MethodPost, "/api/categories/",
			`{"name":"   "}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Category name is required.", envelope.Message)
	})
}

func TestCategoryDeleteHandler(t *testing.T) {
	t.Run("still referenced", func(t *testing.T) {
		service := &mockCategoryService{
			DeleteFunc: func(_ context.Context, _ int64) error {
				return models.ErrConflict
			},
		}

		recorder, envelope := doRequest(t, newCategoryRouter(service), http.MethodDelete, "/api/categories/1", "")
		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Equal(t, "Category still has books and cannot be deleted.", envelope.Message)
	})

	t.Run("not found", func(t *testing.T) {
		recorder, envelope := doRequest(t, newCategoryRouter(&mockCategoryService{}), http.MethodDelete,
			"/api/categories/1", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Category not found.", envelope.Message)
	})
}
