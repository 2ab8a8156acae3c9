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
	"github.com/inkwell-labs/bookstore-api/internal/services"
)

type mockBookService struct {
	ListFunc    func(ctx context.Context, categoryName, search string, page, limit int) (*services.BookPage, error)
	GetByIDFunc func(ctx context.Context, id int64) (*models.Book, error)
	CreateFunc  func(ctx context.Context, book *models.Book) (*models.Book, error)
	UpdateFunc  func(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *mockBookService) List(ctx context.Context, categoryName, search string, page, limit int) (*services.BookPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, categoryName, search, page, limit)
	}
	return &services.BookPage{Books: nil, TotalItems: 0, TotalPages: 1, CurrentPage: 1, Limit: limit}, nil
}

func (m *mockBookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockBookService) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, book)
	}
	return nil, models.ErrInternalServer
}

func (m *mockBookService) Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, book)
	}
	return nil, models.ErrNotFound
}

func (m *mockBookService) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return models.ErrNotFound
}

func newBookRouter(service BookServiceInterface) *chi.Mux {
	handler := NewBookHandler(service)
	router := chi.NewRouter()
	router.Get("/api/books/", handler.List)
	router.Get("/api/books/{id}", handler.Get)
	router.Post("/api/books/", handler.Create)
	router.Put("/api/books/{id}", handler.Update)
	router.Delete("/api/books/{id}", handler.Delete)
	return router
}

func bookFixture(id int64) *models.Book {
	return &models.Book{
		ID:               id,
		Title:            "The Pragmatic Programmer",
		AuthorName:       "Hunt & Thomas",
		UnitPrice:        42.00,
		TotalRatingValue: 9,
		TotalRatingCount: 2,
		CategoryID:       1,
	}
}

func TestBookListHandler_WireShape(t *testing.T) {
	service := &mockBookService{
		ListFunc: func(_ context.Context, categoryName, search string, page, limit int) (*services.BookPage, error) {
			assert.Equal(t, "Fiction", categoryName)
			assert.Equal(t, "pragmatic", search)
			assert.Equal(t, 2, page)
			assert.Equal(t, 5, limit)
			return &services.BookPage{
				Books:       []*models.Book{bookFixture(7)},
				TotalItems:  11,
				TotalPages:  3,
				CurrentPage: 2,
				Limit:       5,
			}, nil
		},
	}

	recorder, _ := doRequest(t, newBookRouter(service), http.MethodGet,
		"/api/books/?page=2&limit=5&category=Fiction&search=pragmatic", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	// The storefront renders camelCase keys; pin them down.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &raw))
	require.Contains(t, raw, "data")
	require.Contains(t, raw, "pagination")
	require.Contains(t, raw, "status")

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw["data"], &data))
	require.Len(t, data, 1)
	assert.Equal(t, "Hunt & Thomas", data[0]["authorName"])
	assert.Equal(t, float64(42), data[0]["unitPrice"])
	assert.Equal(t, float64(9), data[0]["totalRatingValue"])
	assert.Equal(t, float64(2), data[0]["totalRatingCount"])

	var pagination map[string]interface{}
	require.NoError(t, json.Unmarshal(raw["pagination"], &pagination))
	assert.Equal(t, float64(3), pagination["totalPages"])
	assert.Equal(t, float64(11), pagination["totalItems"])
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(5), pagination["limit"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, true, pagination["hasPrevious"])
}

func TestBookListHandler_DefaultPagination(t *testing.T) {
	service := &mockBookService{
		ListFunc: func(_ context.Context, _, _ string, page, limit int) (*services.BookPage, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 10, limit)
			return &services.BookPage{TotalItems: 0, TotalPages: 1, CurrentPage: 1, Limit: limit}, nil
		},
	}

	recorder, _ := doRequest(t, newBookRouter(service), http.MethodGet, "/api/books/", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestBookListHandler_InvalidPagination(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"non-numeric limit", "/api/books/?limit=abc"},
		{"non-numeric page", "/api/books/?page=x"},
		{"zero page", "/api/books/?page=0"},
		{"negative limit", "/api/books/?limit=-5"},
	}

	service := &mockBookService{
		ListFunc: func(_ context.Context, _, _ string, page, limit int) (*services.BookPage, error) {
			if page < 1 || limit < 1 {
				return nil, models.ErrBadRequest
			}
			return &services.BookPage{TotalPages: 1, CurrentPage: page, Limit: limit}, nil
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, _ := doRequest(t, newBookRouter(service), http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusBadRequest, recorder.Code)

			var body struct {
				Data       []interface{} `json:"data"`
				Pagination interface{}   `json:"pagination"`
				Error      string        `json:"error"`
			}
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "Invalid page or limit parameter", body.Error)
			assert.Nil(t, body.Pagination)
			assert.Empty(t, body.Data)
		})
	}
}

func TestBookGetHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		service := &mockBookService{
			GetByIDFunc: func(_ context.Context, id int64) (*models.Book, error) {
				assert.Equal(t, int64(7), id)
				return bookFixture(7), nil
			},
		}

		recorder, envelope := doRequest(t, newBookRouter(service), http.MethodGet, "/api/books/7", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "The Pragmatic Programmer", dataObject(t, envelope)["title"])
	})

	t.Run("not found", func(t *testing.T) {
		recorder, envelope := doRequest(t, newBookRouter(&mockBookService{}), http.MethodGet, "/api/books/7", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Book not found.", envelope.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		recorder, envelope := doRequest(t, newBookRouter(&mockBookService{}), http.MethodGet, "/api/books/abc", "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Invalid book ID.", envelope.Message)
	})
}

func TestBookCreateHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockBookService{
			CreateFunc: func(_ context.Context, book *models.Book) (*models.Book, error) {
				assert.Equal(t, "New Book", book.Title)
				assert.Equal(t, int64(3), book.CategoryID)
				book.ID = 99
				return book, nil
			},
		}

		recorder, envelope := doRequest(t, newBookRouter(service), http.MethodPost, "/api/books/",
			`{"title":"New Book","author_name":"Somebody","unit_price":9.99,"category_id":3}`)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "Book created.", envelope.Message)
		assert.Equal(t, float64(99), dataObject(t, envelope)["id"])
	})

	t.Run("missing title", func(t *testing.T) {
		recorder, _ := doRequest(t, newBookRouter(&mockBookService{}), http.MethodPost, "/api/books/",
			`{"author_name":"Somebody","unit_price":9.99,"category_id":3}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("unknown category", func(t *testing.T) {
		service := &mockBookService{
			CreateFunc: func(_ context.Context, _ *models.Book) (*models.Book, error) {
				return nil, models.ErrBadRequest
			},
		}

		recorder, envelope := doRequest(t, newBookRouter(service), http.MethodPost, "/api/books/",
			`{"title":"New Book","author_name":"Somebody","unit_price":9.99,"category_id":99}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Invalid book data or unknown category.", envelope.Message)
	})

	t.Run("bad published date", func(t *testing.T) {
		recorder, envelope := doRequest(t, newBookRouter(&mockBookService{}), http.MethodPost, "/api/books/",
			`{"title":"New Book","author_name":"Somebody","unit_price":9.99,"category_id":3,"published_date":"April 1999"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Published date must be in YYYY-MM-DD format.", envelope.Message)
	})
}

func TestBookUpdateHandler_NotFound(t *testing.T) {
	recorder, envelope := doRequest(t, newBookRouter(&mockBookService{}), http.MethodPut, "/api/books/7",
		`{"title":"New Title","author_name":"Somebody","unit_price":9.99,"category_id":3}`)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Book not found.", envelope.Message)
}

func TestBookDeleteHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockBookService{
			DeleteFunc: func(_ context.Context, id int64) error {
				assert.Equal(t, int64(7), id)
				return nil
			},
		}

		recorder, envelope := doRequest(t, newBookRouter(service), http.MethodDelete, "/api/books/7", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "Book deleted.", envelope.Message)
	})

	t.Run("not found", func(t *testing.T) {
		recorder, envelope := doRequest(t, newBookRouter(&mockBookService{}), http.MethodDelete, "/api/books/7", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Book not found.", envelope.Message)
	})
}
