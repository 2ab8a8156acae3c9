package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-labs/bookstore-api/internal/models"
	"github.com/inkwell-labs/bookstore-api/internal/services"
)

// BookServiceInterface defines the interface for catalog business logic
type BookServiceInterface interface {
	List(ctx context.Context, categoryName, search string, page, limit int) (*services.BookPage, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	Update(ctx context.Context, id int64, book *models.Book) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	service BookServiceInterface
}

func NewBookHandler(service BookServiceInterface) *BookHandler {
	return &BookHandler{service: service}
}

// bookJSON is the camelCase wire shape the storefront renders.
type bookJSON struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	AuthorName       string  `json:"authorName"`
	UnitPrice        float64 `json:"unitPrice"`
	PhotoPath        *string `json:"photoPath"`
	TotalRatingValue int     `json:"totalRatingValue"`
	TotalRatingCount int     `json:"totalRatingCount"`
}

type paginationJSON struct {
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

type bookListResponse struct {
	Data       []bookJSON      `json:"data"`
	Pagination *paginationJSON `json:"pagination"`
	Status     int             `json:"status"`
	Error      string          `json:"error,omitempty"`
}

func toBookJSON(book *models.Book) bookJSON {
	return bookJSON{
		ID:               book.ID,
		Title:            book.Title,
		AuthorName:       book.AuthorName,
		UnitPrice:        book.UnitPrice,
		PhotoPath:        book.PhotoPath,
		TotalRatingValue: book.TotalRatingValue,
		TotalRatingCount: book.TotalRatingCount,
	}
}

// List handles GET /api/books/?page&limit&category&search
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageErr := queryInt(r, "page", 1)
	limit, limitErr := queryInt(r, "limit", 10)
	if pageErr != nil || limitErr != nil {
		writeJSON(w, http.StatusBadRequest, bookListResponse{
			Data:   []bookJSON{},
			Status: http.StatusBadRequest,
			Error:  "Invalid page or limit parameter",
		})
		return
	}

	result, err := h.service.List(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("search"), page, limit)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, bookListResponse{
				Data:   []bookJSON{},
				Status: http.StatusBadRequest,
				Error:  "Invalid page or limit parameter",
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, bookListResponse{
			Data:   []bookJSON{},
			Status: http.StatusInternalServerError,
			Error:  "Failed to list books",
		})
		return
	}

	data := make([]bookJSON, 0, len(result.Books))
	for _, book := range result.Books {
		data = append(data, toBookJSON(book))
	}

	writeJSON(w, http.StatusOK, bookListResponse{
		Data: data,
		Pagination: &paginationJSON{
			TotalPages:  result.TotalPages,
			TotalItems:  result.TotalItems,
			CurrentPage: result.CurrentPage,
			Limit:       result.Limit,
			HasNext:     result.HasNext(),
			HasPrevious: result.HasPrevious(),
		},
		Status: http.StatusOK,
	})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// Get handles GET /api/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid book ID.")
		return
	}

	book, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Book not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to get book.")
		return
	}

	writeMessageWithData(w, http.StatusOK, "OK", toBookJSON(book))
}

// BookRequest represents the request body for creating or updating a book
type BookRequest struct {
	Title         string  `json:"title" validate:"required,min=1"`
	Description   *string `json:"description"`
	AuthorName    string  `json:"author_name" validate:"required,min=1"`
	PublisherName *string `json:"publisher_name"`
	PublishedDate *string `json:"published_date"`
	UnitPrice     float64 `json:"unit_price" validate:"gte=0"`
	PhotoPath     *string `json:"photo_path"`
	CategoryID    int64   `json:"category_id" validate:"required"`
}

func (req *BookRequest) toModel() (*models.Book, error) {
	book := &models.Book{
		Title:         req.Title,
		Description:   req.Description,
		AuthorName:    req.AuthorName,
		PublisherName: req.PublisherName,
		UnitPrice:     req.UnitPrice,
		PhotoPath:     req.PhotoPath,
		CategoryID:    req.CategoryID,
	}
	if req.PublishedDate != nil {
		published, err := time.Parse("2006-01-02", *req.PublishedDate)
		if err != nil {
			return nil, err
		}
		book.PublishedDate = &published
	}
	return book, nil
}

// Create handles POST /api/books (admin)
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := req.toModel()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Published date must be in YYYY-MM-DD format.")
		return
	}

	created, err := h.service.Create(r.Context(), book)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			writeMessage(w, http.StatusBadRequest, "Invalid book data or unknown category.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to create book.")
		return
	}

	writeMessageWithData(w, http.StatusCreated, "Book created.", toBookJSON(created))
}

// Update handles PUT /api/books/{id} (admin)
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid book ID.")
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := ValidateRequest(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	book, err := req.toModel()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Published date must be in YYYY-MM-DD format.")
		return
	}

	updated, err := h.service.Update(r.Context(), id, book)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "Book not found.")
		case errors.Is(err, models.ErrBadRequest):
			writeMessage(w, http.StatusBadRequest, "Invalid book data or unknown category.")
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to update book.")
		}
		return
	}

	writeMessageWithData(w, http.StatusOK, "Book updated.", toBookJSON(updated))
}

// Delete handles DELETE /api/books/{id} (admin)
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid book ID.")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Book not found.")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "Failed to delete book.")
		return
	}

	writeMessage(w, http.StatusOK, "Book deleted.")
}
